package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

var (
	boardQuery string
	boardFrom  string
	boardTo    string
	boardEmpty bool
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Mostra o Kanban do funil no terminal",
	Example: `  ligue-imoveis board
  ligue-imoveis board --q maria --from 2025-03-01 --to 2025-03-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().StringVar(&boardQuery, "q", "", "busca por nome, email ou telefone")
	boardCmd.Flags().StringVar(&boardFrom, "from", "", "criados a partir de (YYYY-MM-DD ou RFC3339)")
	boardCmd.Flags().StringVar(&boardTo, "to", "", "criados até (inclusivo)")
	boardCmd.Flags().BoolVar(&boardEmpty, "empty", true, "lista também as etapas sem leads")
}

func runBoard(ctx context.Context) error {
	filter, err := usecase.ParseLeadFilter(boardQuery, boardFrom, boardTo)
	if err != nil {
		return err
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	statuses, err := usecase.NewStatusRegistry(st.Statuses).List(ctx)
	if err != nil {
		return fmt.Errorf("erro ao buscar etapas: %w", err)
	}
	leads, err := st.Leads.List(ctx)
	if err != nil {
		return fmt.Errorf("erro ao buscar leads: %w", err)
	}

	board := usecase.BuildBoard(leads, statuses, filter)
	printBoard(newUI(), board, boardEmpty)
	return nil
}

func printBoard(u *ui, board entity.Board, showEmpty bool) {
	summary := u.Table([]string{"Etapa", "Leads"})
	for _, col := range board.Columns {
		_ = summary.Append([]string{stageColor(col.Status.ID, col.Status.Name), strconv.Itoa(len(col.Leads))})
	}
	_ = summary.Render()
	fmt.Fprintln(u.Out)

	for _, col := range board.Columns {
		if len(col.Leads) == 0 && !showEmpty {
			continue
		}
		fmt.Fprintf(u.Out, "%s (%d)\n", stageColor(col.Status.ID, col.Status.Name), len(col.Leads))
		if len(col.Leads) == 0 {
			fmt.Fprintln(u.Out)
			continue
		}

		table := u.Table([]string{"Nome", "Telefone", "Email", "Atualizado", "ID"})
		for _, l := range col.Leads {
			name := l.Name
			if !l.StatusResolved {
				name += " " + yellow("(etapa inválida)")
			}
			_ = table.Append([]string{
				name,
				l.Phone,
				l.Email,
				l.UpdatedAt.Local().Format("02/01 15:04"),
				l.ID,
			})
		}
		_ = table.Render()
		fmt.Fprintln(u.Out)
	}

	if board.Total() == 0 {
		u.Warning("nenhum lead encontrado")
		return
	}
	u.Success("%d leads em %d etapas", board.Total(), len(board.Columns))
}
