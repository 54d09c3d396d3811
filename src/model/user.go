package model

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	AuthProvider    string    `json:"auth_provider"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

type Session struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	IsBlocked    bool      `json:"is_blocked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// HashPassword hashes the user's password using bcrypt.
func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a given password with the user's hashed password.
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// CreateUser inserts a new user into the database.
func (u *User) CreateUser(db DBTX) error {
	if u.AuthProvider == "" {
		u.AuthProvider = "local"
	}
	res, err := db.Exec(
		`INSERT INTO users (username, password, email, auth_provider, is_email_verified) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Password, u.Email, u.AuthProvider, u.IsEmailVerified)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Email, &user.AuthProvider, &user.IsEmailVerified)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(db DBTX, username string) (*User, error) {
	return scanUser(db.QueryRow(
		`SELECT id, username, password, email, auth_provider, is_email_verified FROM users WHERE username = ?`, username))
}

func GetUserByEmail(db DBTX, email string) (*User, error) {
	return scanUser(db.QueryRow(
		`SELECT id, username, password, email, auth_provider, is_email_verified FROM users WHERE email = ?`, email))
}

func GetUserByID(db DBTX, id int64) (*User, error) {
	return scanUser(db.QueryRow(
		`SELECT id, username, password, email, auth_provider, is_email_verified FROM users WHERE id = ?`, id))
}

// SetVerificationToken stores an email verification token for the user.
func (u *User) SetVerificationToken(db DBTX, token string, expiresAt time.Time) error {
	_, err := db.Exec(
		`UPDATE users SET email_verification_token = ?, email_verification_token_expires_at = ? WHERE id = ?`,
		token, expiresAt, u.ID)
	return err
}

// VerifyEmailByToken marks the matching user as verified and clears the token.
func VerifyEmailByToken(db DBTX, token string) error {
	res, err := db.Exec(
		`UPDATE users
		 SET is_email_verified = TRUE, email_verification_token = NULL, email_verification_token_expires_at = NULL
		 WHERE email_verification_token = ? AND email_verification_token_expires_at > CURRENT_TIMESTAMP`, token)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("invalid or expired verification token")
	}
	return nil
}

// CreateSession inserts a new session into the database.
func CreateSession(db DBTX, session *Session) error {
	res, err := db.Exec(
		`INSERT INTO sessions (user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.UserID, session.Token, session.RefreshToken, session.UserAgent,
		session.ClientIP, session.IsBlocked, session.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id
	return nil
}

func GetSessionByToken(db DBTX, token string) (*Session, error) {
	row := db.QueryRow(
		`SELECT id, user_id, token, refresh_token, is_blocked, expires_at FROM sessions WHERE token = ?`, token)
	var session Session
	err := row.Scan(&session.ID, &session.UserID, &session.Token, &session.RefreshToken, &session.IsBlocked, &session.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found")
		}
		return nil, err
	}
	return &session, nil
}

func GetSessionByRefreshToken(db DBTX, refreshToken string) (*Session, error) {
	row := db.QueryRow(
		`SELECT id, user_id, token, refresh_token, is_blocked, expires_at FROM sessions WHERE refresh_token = ?`, refreshToken)
	var session Session
	err := row.Scan(&session.ID, &session.UserID, &session.Token, &session.RefreshToken, &session.IsBlocked, &session.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found")
		}
		return nil, err
	}
	return &session, nil
}

// UpdateSessionToken replaces the access token of an existing session.
func UpdateSessionToken(db DBTX, sessionID int64, newToken string) error {
	_, err := db.Exec(`UPDATE sessions SET token = ? WHERE id = ?`, newToken, sessionID)
	return err
}

func DeleteSessionByToken(db DBTX, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}
