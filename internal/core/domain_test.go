package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Income ")
	require.NoError(t, err)
	require.Equal(t, Income, k)

	k, err = ParseKind("expense")
	require.NoError(t, err)
	require.Equal(t, Expense, k)

	for _, in := range []string{"", "transfer", "incomes"} {
		_, err := ParseKind(in)
		require.Error(t, err, in)
		require.True(t, IsValidation(err))
		require.ErrorIs(t, err, ErrInvalidKind)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, NewDate(2024, 2, 29), d)
	require.Equal(t, "2024-02-29", d.String())

	for _, in := range []string{"", "2023-02-29", "2024-13-01", "01/02/2024", "tomorrow"} {
		_, err := ParseDate(in)
		require.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := DateOf(time.Date(2025, 3, 31, 23, 30, 0, 0, loc))
	require.Equal(t, NewDate(2025, 3, 31), got)
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:        Expense,
		Amount:      Money{Cents: 100},
		Description: "",
		Date:        NewDate(2025, 1, 1),
	}
	require.NoError(t, good.Validate())

	cases := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"bad kind", func(tx *Transaction) { tx.Kind = "gift" }, ErrInvalidKind},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -5} }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", MaxDescriptionLen+1) }, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			err := tx.Validate()
			require.ErrorIs(t, err, tc.want)
			require.True(t, IsValidation(err))
		})
	}
}

func TestSigned(t *testing.T) {
	require.Equal(t, int64(250), Transaction{Kind: Income, Amount: Money{Cents: 250}}.Signed())
	require.Equal(t, int64(-250), Transaction{Kind: Expense, Amount: Money{Cents: 250}}.Signed())
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&StorageError{Op: "insert transaction", Err: cause})
	require.True(t, IsStorage(err))
	require.False(t, IsValidation(err))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "storage: insert transaction: disk full", err.Error())
}
