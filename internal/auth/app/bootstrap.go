package app

import (
	"context"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/service"
)

// bootstrapAdmin seeds the first privileged administrator when the admin
// silo is empty and the bootstrap credentials are configured. Once any
// admin exists this is a no-op, so the env vars can stay set across
// restarts without effect.
func (app *Application) bootstrapAdmin(ctx context.Context) error {
	if !app.cfg.BootstrapAdmin.complete() {
		return nil
	}

	empty, err := app.db.Principals(domain.DomainAdmin).IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	admin, err := app.principalService.Create(ctx, domain.DomainAdmin, service.CreateParams{
		LoginName:      app.cfg.BootstrapAdmin.LoginName,
		ContactAddress: app.cfg.BootstrapAdmin.ContactAddress,
		Password:       app.cfg.BootstrapAdmin.Password,
		Privileged:     true,
	})
	if err != nil {
		return err
	}

	app.logger.Info("bootstrapped initial admin account",
		"principal_id", admin.ID.String(),
		"login_name", admin.LoginName,
	)
	return nil
}
