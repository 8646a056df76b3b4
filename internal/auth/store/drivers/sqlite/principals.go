package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/pkg/idx"
)

type principalsRepo struct {
	db    dbtx
	table string
}

const principalColumns = `id, login_name, contact_address, password_hash,
	first_name, last_name, active, privileged, created_at, updated_at, last_login`

func (r *principalsRepo) GetByID(ctx context.Context, id idx.ID) (domain.Principal, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, principalColumns, r.table)
	return scanPrincipal(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *principalsRepo) GetByLoginName(ctx context.Context, loginName string) (domain.Principal, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE login_name = ?`, principalColumns, r.table)
	return scanPrincipal(r.db.QueryRowContext(ctx, query, loginName))
}

func (r *principalsRepo) GetByContactAddress(ctx context.Context, address string) (domain.Principal, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE contact_address = ?`, principalColumns, r.table)
	return scanPrincipal(r.db.QueryRowContext(ctx, query, address))
}

func (r *principalsRepo) Create(ctx context.Context, p domain.Principal) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, login_name, contact_address, password_hash,
			first_name, last_name, active, privileged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		p.ID.String(),
		p.LoginName,
		p.ContactAddress,
		p.PasswordHash,
		p.FirstName,
		p.LastName,
		boolToInt(p.Active),
		boolToInt(p.Privileged),
	)
	return mapConstraint(err)
}

func (r *principalsRepo) List(ctx context.Context, offset, limit int) ([]domain.Principal, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY created_at, id LIMIT ? OFFSET ?`,
		principalColumns, r.table,
	)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []domain.Principal
	for rows.Next() {
		p, err := scanPrincipalRow(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

func (r *principalsRepo) UpdateProfile(
	ctx context.Context,
	id idx.ID,
	firstName, lastName, contactAddress string,
) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET first_name = ?, last_name = ?, contact_address = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, firstName, lastName, contactAddress, id.String())
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *principalsRepo) UpdatePasswordHash(ctx context.Context, id idx.ID, newHash string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, newHash, id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *principalsRepo) SetActive(ctx context.Context, id idx.ID, active bool) error {
	query := fmt.Sprintf(`
		UPDATE %s SET active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, boolToInt(active), id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *principalsRepo) SetPrivileged(ctx context.Context, id idx.ID, privileged bool) error {
	query := fmt.Sprintf(`
		UPDATE %s SET privileged = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, boolToInt(privileged), id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *principalsRepo) UpdateLastLogin(ctx context.Context, id idx.ID, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_login = ? WHERE id = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, at.UTC(), id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *principalsRepo) Delete(ctx context.Context, id idx.ID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.table)

	res, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *principalsRepo) IsEmpty(ctx context.Context) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)

	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(row *sql.Row) (domain.Principal, error) {
	p, err := scanPrincipalRow(row)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func scanPrincipalRow(row rowScanner) (domain.Principal, error) {
	var (
		p                  domain.Principal
		id                 string
		active, privileged int64
		lastLogin          sql.NullTime
	)

	err := row.Scan(
		&id,
		&p.LoginName,
		&p.ContactAddress,
		&p.PasswordHash,
		&p.FirstName,
		&p.LastName,
		&active,
		&privileged,
		&p.CreatedAt,
		&p.UpdatedAt,
		&lastLogin,
	)
	if err != nil {
		return domain.Principal{}, err
	}

	p.ID = idx.ID(id)
	p.Active = active != 0
	p.Privileged = privileged != 0
	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLogin = &t
	}
	return p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
