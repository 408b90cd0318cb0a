package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect диалект SQL хранилища
type Dialect string

const (
	// DialectPostgres PostgreSQL через pgx
	DialectPostgres Dialect = "postgres"
	// DialectSQLite SQLite (modernc) и libsql
	DialectSQLite Dialect = "sqlite"
)

// sqliteTimeLayout фиксированной ширины, чтобы строки сортировались как время
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// queries набор запросов хранилища под конкретный диалект
type queries struct {
	insertLink     string
	selectLink     string
	incrementVisit string
	insertVisit    string
	selectByOwner  string
	stats          string
}

func newQueries(d Dialect) queries {
	q := queries{
		insertLink: "INSERT INTO links (slug, target_url, owner_token, created_at, visit_count) " +
			"VALUES (?, ?, ?, ?, 0) ON CONFLICT (slug) DO NOTHING",
		selectLink: "SELECT slug, target_url, owner_token, created_at, visit_count FROM links WHERE slug = ?",
		incrementVisit: "UPDATE links SET visit_count = visit_count + 1 WHERE slug = ?",
		insertVisit:    "INSERT INTO link_visits (slug, visited_at, client_addr) VALUES (?, ?, ?)",
		selectByOwner: "SELECT slug, target_url, owner_token, created_at, visit_count FROM links " +
			"WHERE owner_token = ? ORDER BY created_at DESC, slug",
		stats: "SELECT COUNT(*), COALESCE(SUM(visit_count), 0) FROM links",
	}
	if d == DialectPostgres {
		q.insertLink = rebind(q.insertLink)
		q.selectLink = rebind(q.selectLink)
		q.incrementVisit = rebind(q.incrementVisit)
		q.insertVisit = rebind(q.insertVisit)
		q.selectByOwner = rebind(q.selectByOwner)
		q.stats = "SELECT COUNT(*), COALESCE(SUM(visit_count), 0)::BIGINT FROM links"
	}
	return q
}

// rebind заменяет плейсхолдеры ? на $1, $2, ...
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// timeArg готовит время к записи в колонку диалекта
func (d Dialect) timeArg(t time.Time) any {
	t = t.UTC()
	if d == DialectSQLite {
		return t.Format(sqliteTimeLayout)
	}
	return t
}

// nullString пустая строка пишется как NULL
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanTime принимает время в любом из представлений драйверов
type scanTime struct {
	t *time.Time
}

// Scan реализует sql.Scanner
func (s scanTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.t = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		*s.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (s scanTime) parse(v string) error {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparsable time value %q", v)
}

// SQLiteDSN строит DSN modernc.org/sqlite с WAL и ожиданием блокировки
func SQLiteDSN(path string, busyTimeout time.Duration) string {
	ms := busyTimeout.Milliseconds()
	if ms <= 0 {
		ms = 5000
	}
	return "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=busy_timeout(" + strconv.FormatInt(ms, 10) + ")"
}
