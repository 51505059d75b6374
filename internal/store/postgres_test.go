package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pe-research/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresCreateSession(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)`)).
		WithArgs(pgxmock.AnyArg(), "Tell me about Apple", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sess, err := s.CreateSession(context.Background(), "Tell me about Apple")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "Tell me about Apple", sess.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetSession(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, created_at, updated_at FROM sessions WHERE id = $1`)).
		WithArgs("abc").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "created_at", "updated_at"}).
			AddRow("abc", "chat", now, now))

	sess, err := s.GetSession(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "chat", sess.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetSessionNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, created_at, updated_at FROM sessions WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "created_at", "updated_at"}))

	sess, err := s.GetSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppendMessageTouchesSession(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO messages (id, session_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs(pgxmock.AnyArg(), "abc", model.RoleUser, "hi", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET updated_at = $1 WHERE id = $2`)).
		WithArgs(pgxmock.AnyArg(), "abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.AppendMessage(context.Background(), "abc", model.Message{Role: model.RoleUser, Content: "hi"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListMessages(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT role, content, created_at FROM messages WHERE session_id = $1 ORDER BY created_at, id`)).
		WithArgs("abc").
		WillReturnRows(pgxmock.NewRows([]string{"role", "content", "created_at"}).
			AddRow(model.RoleUser, "Tell me about Apple", now).
			AddRow(model.RoleAssistant, "# Apple - PE Research Analysis", now.Add(time.Second)))

	msgs, err := s.ListMessages(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClearMessages(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM messages WHERE session_id = $1`)).
		WithArgs("abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, s.ClearMessages(context.Background(), "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
