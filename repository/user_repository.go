package repository

import (
	"database/sql"
	"mercury-api/model"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByID(id int) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	ExistsByEmailOrUsername(email, username string) (bool, error)
	UpdateRefreshToken(userID int, refreshToken string) error
}

// UserRepository implements IUserRepository on top of database/sql.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, name, username, email, password_hash, refresh_token, avatar, bio, is_admin, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Username, &user.Email,
		&user.PasswordHash, &user.RefreshToken, &user.Avatar, &user.Bio,
		&user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) CreateUser(user *model.User) error {
	query := `INSERT INTO users (name, username, email, password_hash, refresh_token, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.DB.QueryRow(query, user.Name, user.Username, user.Email,
		user.PasswordHash, user.RefreshToken, user.IsAdmin).Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetUserByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.DB.QueryRow(query, id))
}

func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.DB.QueryRow(query, email))
}

func (r *UserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(r.DB.QueryRow(query, username))
}

func (r *UserRepository) ExistsByEmailOrUsername(email, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1 OR username=$2)`
	err := r.DB.QueryRow(query, email, username).Scan(&exists)
	return exists, err
}

// UpdateRefreshToken overwrites the account's stored refresh token. The
// single-row UPDATE is the atomic step the refresh rotation relies on;
// an empty string revokes the session (logout).
func (r *UserRepository) UpdateRefreshToken(userID int, refreshToken string) error {
	query := `UPDATE users SET refresh_token=$1 WHERE id=$2`
	result, err := r.DB.Exec(query, refreshToken, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
