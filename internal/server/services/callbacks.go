// Package services contains the credential-lifecycle business logic: the
// coordinator orchestrating registration, login and token issue, plus the
// verification-code and password-reset workflows.
package services

import (
	"context"

	"github.com/ivanpetrenko/authgate/internal/server/models"
)

// Callbacks bundles the outbound notification hooks the embedding application
// supplies. Every field is optional; a nil hook is a no-op. Delivery itself
// (SMTP, SMS gateway, webhooks) lives entirely on the other side of these
// functions.
type Callbacks struct {
	// Registered fires after a registration transaction commits. newAccount
	// reports whether the Account row was created by this registration, as
	// opposed to an anonymous-account upgrade reusing an existing one.
	Registered func(ctx context.Context, user *models.User, newAccount bool) error

	// ForgotPassword delivers a freshly generated reset code to the user.
	ForgotPassword func(ctx context.Context, user *models.User, code string) error

	// ForgotUsername delivers the usernames matching a contact. usernames may
	// be empty; zero matches is still delivered.
	ForgotUsername func(ctx context.Context, contact, usernames string) error

	// SendEmailCode / SendPhoneCode deliver a formatted verification code to
	// the contact over the respective channel.
	SendEmailCode func(ctx context.Context, contact, code string) error
	SendPhoneCode func(ctx context.Context, contact, code string) error

	// Verified fires after a verification commits, with the caller's original
	// request data.
	Verified func(ctx context.Context, req *VerifyRequest) error

	// DecorateAccount and DecorateUser let the embedding application attach
	// engine-specific fields to rows being built during registration and
	// anonymous-user creation. They run after the base fields are set, so
	// their writes win.
	DecorateAccount func(ctx context.Context, account *models.Account, req *RegisterRequest)
	DecorateUser    func(ctx context.Context, user *models.User, req *RegisterRequest)
}

func (c *Callbacks) registered(ctx context.Context, user *models.User, newAccount bool) error {
	if c == nil || c.Registered == nil {
		return nil
	}
	return c.Registered(ctx, user, newAccount)
}

func (c *Callbacks) forgotPassword(ctx context.Context, user *models.User, code string) error {
	if c == nil || c.ForgotPassword == nil {
		return nil
	}
	return c.ForgotPassword(ctx, user, code)
}

func (c *Callbacks) forgotUsername(ctx context.Context, contact, usernames string) error {
	if c == nil || c.ForgotUsername == nil {
		return nil
	}
	return c.ForgotUsername(ctx, contact, usernames)
}

func (c *Callbacks) sendEmailCode(ctx context.Context, contact, code string) error {
	if c == nil || c.SendEmailCode == nil {
		return nil
	}
	return c.SendEmailCode(ctx, contact, code)
}

func (c *Callbacks) sendPhoneCode(ctx context.Context, contact, code string) error {
	if c == nil || c.SendPhoneCode == nil {
		return nil
	}
	return c.SendPhoneCode(ctx, contact, code)
}

func (c *Callbacks) verified(ctx context.Context, req *VerifyRequest) error {
	if c == nil || c.Verified == nil {
		return nil
	}
	return c.Verified(ctx, req)
}

func (c *Callbacks) decorateAccount(ctx context.Context, account *models.Account, req *RegisterRequest) {
	if c == nil || c.DecorateAccount == nil {
		return
	}
	c.DecorateAccount(ctx, account, req)
}

func (c *Callbacks) decorateUser(ctx context.Context, user *models.User, req *RegisterRequest) {
	if c == nil || c.DecorateUser == nil {
		return
	}
	c.DecorateUser(ctx, user, req)
}
