package users

import (
	"fmt"

	"entitycore/src/domain"
	"entitycore/src/domain/model"

	"golang.org/x/crypto/bcrypt"
)

const (
	TypeName      = "User"
	Table         = "users"
	PrimaryKey    = "id"
	PasswordField = "password"
)

// PasswordCost is the bcrypt cost used when hashing passwords.
var PasswordCost = bcrypt.DefaultCost

func Definition() model.Definition {
	return model.Definition{
		Name:         TypeName,
		Table:        Table,
		PrimaryKey:   PrimaryKey,
		Incrementing: true,
		Protected:    []string{PasswordField},
		Transformers: map[string]model.Transformer{
			PasswordField: HashPassword,
		},
	}
}

func NewType(config model.Config) *model.Type {
	return model.NewType(Definition(), config)
}

// HashPassword stores the bcrypt hash of a plain text password. Every assigned
// value is hashed; stored hashes are loaded through Type.Find, which bypasses
// transformers.
func HashPassword(e *model.Entity, value any) error {
	plain, ok := value.(string)
	if !ok || plain == "" {
		return fmt.Errorf("%s must be a non-empty string: %w", PasswordField, domain.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", PasswordField, err)
	}

	e.SetRawAttribute(PasswordField, string(hash))
	return nil
}

// CheckPassword reports whether plain matches the stored hash of e.
func CheckPassword(e *model.Entity, plain string) bool {
	stored, ok := e.GetAttribute(PasswordField)
	if !ok {
		return false
	}
	hash, ok := stored.(string)
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
