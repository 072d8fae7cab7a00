package storage

const (
	insertTransactionSQL = `
INSERT INTO transactions (type, amount_cents, description, date, created_at)
VALUES (?, ?, ?, ?, ?)`

	updateTransactionSQL = `
UPDATE transactions
SET type = ?, amount_cents = ?, description = ?, date = ?
WHERE id = ?`

	deleteTransactionSQL = `DELETE FROM transactions WHERE id = ?`

	getTransactionSQL = `
SELECT id, type, amount_cents, description, date, created_at
FROM transactions
WHERE id = ?`

	listTransactionsByRangeSQL = `
SELECT id, type, amount_cents, description, date, created_at
FROM transactions
WHERE date BETWEEN ? AND ?
ORDER BY date DESC, id DESC`

	totalsByRangeSQL = `
SELECT
    COALESCE(SUM(CASE WHEN type = 'income'  THEN amount_cents END), 0),
    COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents END), 0)
FROM transactions
WHERE date BETWEEN ? AND ?`
)
