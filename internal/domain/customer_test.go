package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomer_IsBlocked(t *testing.T) {
	for _, alert := range []string{"negativo", "NEGATIVO", " Negativo "} {
		assert.True(t, (&Customer{Alert: alert}).IsBlocked(), alert)
	}
	for _, alert := range []string{"", "vip", "negative"} {
		assert.False(t, (&Customer{Alert: alert}).IsBlocked(), alert)
	}
}

func TestCustomerIntake_Validate(t *testing.T) {
	valid := CustomerIntake{DocumentNumber: "1020304050", FirstName: "Ana", LastName: "Gomez"}
	assert.NoError(t, valid.Validate())

	for name, in := range map[string]CustomerIntake{
		"NoDocument": {FirstName: "Ana", LastName: "Gomez"},
		"BlankFirst": {DocumentNumber: "1", FirstName: "  ", LastName: "Gomez"},
		"NoLastName": {DocumentNumber: "1", FirstName: "Ana"},
	} {
		assert.ErrorIs(t, in.Validate(), ErrValidation, name)
	}
}
