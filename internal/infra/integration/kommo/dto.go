package kommo

type CreateLeadInput struct {
	Name    string
	Phone   string // Ex: "5511999999999"
	Email   string
	Message string
}

type ContactResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type embeddedContacts struct {
	Embedded struct {
		Contacts []ContactResponse `json:"contacts"`
	} `json:"_embedded"`
}

type embeddedLeads struct {
	Embedded struct {
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
	} `json:"_embedded"`
}
