package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-imoveis/internal/infra/integration/kommo"
)

var kommoInput kommo.CreateLeadInput

// kommoCheckCmd cria um lead de teste no Kommo com as credenciais do ambiente.
var kommoCheckCmd = &cobra.Command{
	Use:   "kommo-check",
	Short: "Cria um lead de teste no Kommo para validar token e pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		if !cfg.Kommo.Enabled() {
			return errors.New("KOMMO_URL e KOMMO_TOKEN devem estar configurados")
		}

		u := newUI()
		client := kommo.NewClient(cfg.Kommo.BaseURL, cfg.Kommo.Token, cfg.Kommo.PipelineStatusID, log.Named("kommo"))

		fmt.Fprintf(u.Out, "Criando lead no Kommo (%s)...\n", cfg.Kommo.BaseURL)
		fmt.Fprintf(u.Out, "   Nome: %s\n   Telefone: %s\n   Email: %s\n\n", kommoInput.Name, kommoInput.Phone, kommoInput.Email)

		leadID, err := client.CreateLead(cmd.Context(), kommoInput)
		if err != nil {
			return fmt.Errorf("erro ao criar lead no Kommo: %w", err)
		}
		u.Success("Lead #%d criado: %s/leads/detail/%d", leadID, cfg.Kommo.BaseURL, leadID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kommoCheckCmd)
	kommoCheckCmd.Flags().StringVar(&kommoInput.Name, "name", "Lead Teste do Site", "nome do lead")
	kommoCheckCmd.Flags().StringVar(&kommoInput.Phone, "phone", "5511999999999", "telefone")
	kommoCheckCmd.Flags().StringVar(&kommoInput.Email, "email", "teste@ligueimoveis.com.br", "email")
	kommoCheckCmd.Flags().StringVar(&kommoInput.Message, "message", "Lead criado pelo kommo-check", "mensagem")
}
