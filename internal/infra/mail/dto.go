package mail

type NewLeadAlert struct {
	Name       string
	Email      string
	Phone      string
	Message    string
	StatusName string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AdminTo  string // caixa que recebe os alertas de lead novo
}
