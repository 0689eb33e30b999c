package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

func TestPrintBoard(t *testing.T) {
	color.NoColor = true
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	statuses := []entity.Status{
		{ID: "novo", Name: "Novo", Order: 1},
		{ID: "ganho", Name: "Ganho", Order: 2},
	}
	leads := []entity.Lead{
		{ID: "l1", Name: "Maria Souza", Phone: "11999990000", StatusID: "novo", CreatedAt: now, UpdatedAt: now},
		{ID: "l2", Name: "João Lima", StatusID: "sumiu", CreatedAt: now, UpdatedAt: now},
	}

	var out, errOut bytes.Buffer
	printBoard(&ui{Out: &out, ErrOut: &errOut}, usecase.BuildBoard(leads, statuses, usecase.LeadFilter{}), true)

	s := out.String()
	assert.Contains(t, s, "Maria Souza")
	assert.Contains(t, s, "João Lima (etapa inválida)")
	assert.Contains(t, s, "Ganho (0)")
	assert.Contains(t, s, "2 leads em 2 etapas")
	assert.Empty(t, errOut.String())
}

func TestPrintBoardEmpty(t *testing.T) {
	color.NoColor = true
	statuses := []entity.Status{{ID: "novo", Name: "Novo", Order: 1}}

	var out, errOut bytes.Buffer
	printBoard(&ui{Out: &out, ErrOut: &errOut}, usecase.BuildBoard(nil, statuses, usecase.LeadFilter{}), false)

	assert.NotContains(t, out.String(), "Novo (0)")
	assert.Contains(t, errOut.String(), "nenhum lead encontrado")
}
