package tui

import (
	"context"
	"errors"

	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/tui/model"
	"go.uber.org/zap"
)

// submitServer resolves an organization code. On success the status change
// moves to the sign-in page.
func (a *App) submitServer(code string) {
	a.server.SetBusy(true)
	go func() {
		org, err := a.vm.SelectOrganization(a.ctx, code)
		a.queue(func() {
			a.server.SetBusy(false)
			if err != nil {
				a.logger.Info("organization rejected", zap.String("code", code), zap.Error(err))
				a.server.ShowError(serverError(err))
				return
			}
			a.login.SetOrganization(org.Name, org.URL)
			a.flash.Info("connected to " + org.Name)
		})
	}()
}

func serverError(err error) string {
	if errors.Is(err, organization.ErrInvalidCode) {
		return "Enter a valid organization code"
	}
	return remote.UserMessage(err)
}

func (a *App) submitLogin(phone, password string) {
	a.login.SetBusy(true)
	go func() {
		err := a.vm.SignIn(a.ctx, phone, password)
		a.queue(func() {
			a.login.SetBusy(false)
			if err != nil {
				a.login.ShowError(loginError(err))
			}
		})
	}()
}

func loginError(err error) string {
	switch {
	case errors.Is(err, model.ErrMissingCredentials):
		return "Phone and password are required"
	case errors.Is(err, remote.ErrUnauthorized):
		return "Incorrect phone or password"
	}
	return remote.UserMessage(err)
}

func (a *App) changeServer() {
	a.deps.Flows.Invalidate()
	if err := a.vm.ResetServer(); err != nil {
		a.flash.Err(err)
	}
}

func (a *App) signOut() {
	a.deps.Flows.Invalidate()
	a.run("sign out", func(context.Context) error { return a.vm.SignOut() }, nil)
}
