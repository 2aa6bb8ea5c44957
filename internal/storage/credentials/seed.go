package credentials

import (
	"context"

	"github.com/esgtools/esgkeeper/internal/config"
	"github.com/esgtools/esgkeeper/internal/cryptox"
	"github.com/esgtools/esgkeeper/internal/models"
)

// Seed inserts the bootstrap admin credential exactly once. It hashes the
// configured password and relies on the insert's conflict clause, so running
// it on every startup never resets lockout state or overwrites a rotated
// password.
func Seed(ctx context.Context, repo *Repository, cfg *config.Config) error {
	digest, salt := cryptox.HashPassword(cfg.AdminPassword, nil)

	return repo.Create(ctx, &models.Credential{
		Identity:     cfg.AdminIdentity,
		Email:        cfg.AdminEmail,
		DisplayName:  "Administrator",
		PasswordHash: digest,
		Salt:         salt,
		Role:         models.RoleAdmin,
	})
}
