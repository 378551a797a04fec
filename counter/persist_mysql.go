package counter

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	c "github.com/d0ngw/hitcounter/common"
)

// DefaultTable the default table of MySQLPersist
const DefaultTable = "counters"

// MySQLMaxNameLen the max bytes of a counter name kept by MySQLPersist
const MySQLMaxNameLen = 255

const insertBatchSize = 500

var tableNameValidator = c.NewRegExValidator(regexp.MustCompile(`^[A-Za-z0-9_]+$`), false)

// MySQLPersist implements Persist which keeps one row per counter
type MySQLPersist struct {
	db    *sql.DB
	table string
}

// NewMySQLPersist create MySQLPersist
func NewMySQLPersist(db *sql.DB, table string) (*MySQLPersist, error) {
	if db == nil {
		return nil, errors.New("db must not be nil")
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableNameValidator.Validate(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &MySQLPersist{db: db, table: table}, nil
}

// Init create the table if not exists
func (p *MySQLPersist) Init() error {
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
		"`name` VARCHAR(%d) NOT NULL,"+
		"`val` BIGINT NOT NULL DEFAULT 0,"+
		"PRIMARY KEY (`name`)"+
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin", p.table, MySQLMaxNameLen)
	if _, err := p.db.Exec(ddl); err != nil {
		return &PersistError{Op: "init", Target: p.table, Err: err}
	}
	return nil
}

// Load implements Persist.Load
func (p *MySQLPersist) Load() (s Snapshot, err error) {
	rows, err := p.db.Query(fmt.Sprintf("SELECT `name`,`val` FROM `%s`", p.table))
	if err != nil {
		return Snapshot{}, &PersistError{Op: "load", Target: p.table, Err: err}
	}
	defer rows.Close()

	s = Snapshot{}
	for rows.Next() {
		var name string
		var val int64
		if err = rows.Scan(&name, &val); err != nil {
			return Snapshot{}, &PersistError{Op: "load", Target: p.table, Err: err}
		}
		s[name] = val
	}
	if err = rows.Err(); err != nil {
		return Snapshot{}, &PersistError{Op: "load", Target: p.table, Err: err}
	}
	if err = s.Validate(); err != nil {
		return Snapshot{}, &PersistError{Op: "load", Target: p.table, Err: err}
	}
	return s, nil
}

// Save implements Persist.Save, all rows are replaced in one transaction
func (p *MySQLPersist) Save(s Snapshot) (err error) {
	tx, err := p.db.Begin()
	if err != nil {
		return &PersistError{Op: "save", Target: p.table, Err: err}
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			c.Warnf("rollback %s fail,err:%v", p.table, rbErr)
		}
		err = &PersistError{Op: "save", Target: p.table, Err: err}
	}()

	if _, err = tx.Exec(fmt.Sprintf("DELETE FROM `%s`", p.table)); err != nil {
		return err
	}

	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	for start := 0; start < len(names); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(names) {
			end = len(names)
		}
		query, args := p.insertBatch(names[start:end], s)
		if _, err = tx.Exec(query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (p *MySQLPersist) insertBatch(names []string, s Snapshot) (string, []interface{}) {
	holders := make([]string, 0, len(names))
	args := make([]interface{}, 0, 2*len(names))
	for _, name := range names {
		holders = append(holders, "(?,?)")
		args = append(args, name, s[name])
	}
	query := fmt.Sprintf("INSERT INTO `%s` (`name`,`val`) VALUES %s", p.table, strings.Join(holders, ","))
	return query, args
}

// Clear implements Persist.Clear
func (p *MySQLPersist) Clear() error {
	if _, err := p.db.Exec(fmt.Sprintf("DELETE FROM `%s`", p.table)); err != nil {
		return &PersistError{Op: "clear", Target: p.table, Err: err}
	}
	return nil
}

// Close closes the db
func (p *MySQLPersist) Close() error {
	return p.db.Close()
}
