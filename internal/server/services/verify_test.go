package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerificationService(t *testing.T, rm *fakeRepoManager, cb *Callbacks) (*VerificationService, func()) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 8; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	s := NewVerificationService(db, rm, &fixedRand{intN: 23455}, nopLogger{}, cb, testConfig())
	return s, func() { db.Close() }
}

// fixedRand{intN: 23455} + 6 digits → code 100000 + 23455 = 123455.
const wantCode = 123455

func seedVerifiedUser(rm *fakeRepoManager) *models.User {
	u := &models.User{
		ID:        "u-1",
		AccountID: "a-1",
		Username:  "johnsmith",
		Email:     "john@x.com",
		Phone:     "+13162105368",
		Role:      "user",
	}
	rm.users.byID[u.ID] = u
	return u
}

func TestSendVerifyCode_Email(t *testing.T) {
	rm := newFakeRepoManager()

	var gotContact, gotCode string
	phoneCalled := false
	cb := &Callbacks{
		SendEmailCode: func(ctx context.Context, contact, code string) error {
			gotContact, gotCode = contact, code
			return nil
		},
		SendPhoneCode: func(ctx context.Context, contact, code string) error {
			phoneCalled = true
			return nil
		},
	}
	s, done := newVerificationService(t, rm, cb)
	defer done()

	require.NoError(t, s.SendVerifyCode(context.Background(), "John@X.com"))

	assert.Equal(t, "john@x.com", gotContact)
	assert.Equal(t, "123-455", gotCode, "code must be rendered through the mask")
	assert.False(t, phoneCalled)

	stored, err := rm.verifications.Find(context.Background(), "john@x.com")
	require.NoError(t, err)
	assert.Equal(t, wantCode, stored.Code)
	assert.True(t, stored.ExpiresAt.After(time.Now()))
}

func TestSendVerifyCode_Phone(t *testing.T) {
	rm := newFakeRepoManager()

	var gotContact string
	cb := &Callbacks{
		SendPhoneCode: func(ctx context.Context, contact, code string) error {
			gotContact = contact
			return nil
		},
	}
	s, done := newVerificationService(t, rm, cb)
	defer done()

	require.NoError(t, s.SendVerifyCode(context.Background(), "+1 (316) 210-5368"))
	assert.Equal(t, "+13162105368", gotContact)
}

func TestSendVerifyCode_InvalidContact(t *testing.T) {
	rm := newFakeRepoManager()
	s, done := newVerificationService(t, rm, nil)
	defer done()

	err := s.SendVerifyCode(context.Background(), "123")
	var v *common.ValidationError
	assert.ErrorAs(t, err, &v)
}

func TestSendVerifyCode_DispatchFailureAborts(t *testing.T) {
	rm := newFakeRepoManager()

	boom := errors.New("smtp down")
	cb := &Callbacks{
		SendEmailCode: func(ctx context.Context, contact, code string) error { return boom },
	}
	s, done := newVerificationService(t, rm, cb)
	defer done()

	err := s.SendVerifyCode(context.Background(), "john@x.com")
	assert.ErrorIs(t, err, boom)
}

func TestSendVerifyCode_OverwritesOutstandingCode(t *testing.T) {
	rm := newFakeRepoManager()
	rm.verifications.byContact["john@x.com"] = &models.VerificationRequest{
		ID: "old", Contact: "john@x.com", Code: 999999,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	cb := &Callbacks{
		SendEmailCode: func(ctx context.Context, contact, code string) error { return nil },
	}
	s, done := newVerificationService(t, rm, cb)
	defer done()

	require.NoError(t, s.SendVerifyCode(context.Background(), "john@x.com"))

	stored, err := rm.verifications.Find(context.Background(), "john@x.com")
	require.NoError(t, err)
	assert.Equal(t, wantCode, stored.Code, "the new code must replace the old one")
}

func TestSendVerifyCodeToUser(t *testing.T) {
	rm := newFakeRepoManager()
	seedVerifiedUser(rm)

	var gotContact string
	cb := &Callbacks{
		SendPhoneCode: func(ctx context.Context, contact, code string) error {
			gotContact = contact
			return nil
		},
	}
	s, done := newVerificationService(t, rm, cb)
	defer done()

	require.NoError(t, s.SendVerifyCodeToUser(context.Background(), "u-1", models.ChannelPhone))
	assert.Equal(t, "+13162105368", gotContact)

	t.Run("unknown user", func(t *testing.T) {
		err := s.SendVerifyCodeToUser(context.Background(), "ghost", models.ChannelEmail)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("missing contact", func(t *testing.T) {
		rm.users.byID["u-2"] = &models.User{ID: "u-2"}
		err := s.SendVerifyCodeToUser(context.Background(), "u-2", models.ChannelEmail)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestVerify_EmailSuccess(t *testing.T) {
	rm := newFakeRepoManager()
	seedVerifiedUser(rm)
	rm.verifications.byContact["john@x.com"] = &models.VerificationRequest{
		ID: "v-1", Contact: "john@x.com", Code: wantCode,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	var cbReq *VerifyRequest
	cb := &Callbacks{
		Verified: func(ctx context.Context, req *VerifyRequest) error {
			cbReq = req
			return nil
		},
	}
	s, done := newVerificationService(t, rm, cb)
	defer done()

	req := &VerifyRequest{UserID: "u-1", EmailCode: wantCode}
	require.NoError(t, s.Verify(context.Background(), req))

	user, err := rm.users.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerifiedAt)
	assert.Nil(t, user.PhoneVerifiedAt)

	require.NotNil(t, cbReq)
	assert.Equal(t, req, cbReq)
}

func TestVerify_BothChannels(t *testing.T) {
	rm := newFakeRepoManager()
	seedVerifiedUser(rm)
	rm.verifications.byContact["john@x.com"] = &models.VerificationRequest{
		ID: "v-1", Contact: "john@x.com", Code: 111111,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	rm.verifications.byContact["+13162105368"] = &models.VerificationRequest{
		ID: "v-2", Contact: "+13162105368", Code: 222222,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	s, done := newVerificationService(t, rm, nil)
	defer done()

	req := &VerifyRequest{UserID: "u-1", EmailCode: 111111, PhoneCode: 222222}
	require.NoError(t, s.Verify(context.Background(), req))

	user, err := rm.users.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, user.EmailVerifiedAt)
	assert.NotNil(t, user.PhoneVerifiedAt)
}

func TestVerify_WrongCode(t *testing.T) {
	rm := newFakeRepoManager()
	seedVerifiedUser(rm)
	rm.verifications.byContact["john@x.com"] = &models.VerificationRequest{
		ID: "v-1", Contact: "john@x.com", Code: wantCode,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	s, done := newVerificationService(t, rm, nil)
	defer done()

	err := s.Verify(context.Background(), &VerifyRequest{UserID: "u-1", EmailCode: wantCode + 1})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	user, _ := rm.users.FindByID(context.Background(), "u-1")
	assert.Nil(t, user.EmailVerifiedAt, "a failed verify must not stamp the user")
}

func TestVerify_ExpiredCode(t *testing.T) {
	rm := newFakeRepoManager()
	seedVerifiedUser(rm)
	rm.verifications.byContact["john@x.com"] = &models.VerificationRequest{
		ID: "v-1", Contact: "john@x.com", Code: wantCode,
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	s, done := newVerificationService(t, rm, nil)
	defer done()

	err := s.Verify(context.Background(), &VerifyRequest{UserID: "u-1", EmailCode: wantCode})
	assert.ErrorIs(t, err, common.ErrorExpired)
}

func TestVerify_NoOutstandingCode(t *testing.T) {
	rm := newFakeRepoManager()
	seedVerifiedUser(rm)

	s, done := newVerificationService(t, rm, nil)
	defer done()

	err := s.Verify(context.Background(), &VerifyRequest{UserID: "u-1", EmailCode: wantCode})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerify_NoChannelSupplied(t *testing.T) {
	rm := newFakeRepoManager()
	seedVerifiedUser(rm)

	s, done := newVerificationService(t, rm, nil)
	defer done()

	err := s.Verify(context.Background(), &VerifyRequest{UserID: "u-1"})
	var v *common.ValidationError
	assert.ErrorAs(t, err, &v)
}

func TestVerify_CallbackFailurePropagates(t *testing.T) {
	rm := newFakeRepoManager()
	seedVerifiedUser(rm)
	rm.verifications.byContact["john@x.com"] = &models.VerificationRequest{
		ID: "v-1", Contact: "john@x.com", Code: wantCode,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	boom := errors.New("webhook down")
	cb := &Callbacks{
		Verified: func(ctx context.Context, req *VerifyRequest) error { return boom },
	}
	s, done := newVerificationService(t, rm, cb)
	defer done()

	err := s.Verify(context.Background(), &VerifyRequest{UserID: "u-1", EmailCode: wantCode})
	assert.ErrorIs(t, err, boom)

	// the verification itself still committed
	user, _ := rm.users.FindByID(context.Background(), "u-1")
	assert.NotNil(t, user.EmailVerifiedAt)
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "123-455", formatCode(123455, "###-###"))
	assert.Equal(t, "12 34", formatCode(1234, "## ##"))
	assert.Equal(t, "123455", formatCode(123455, "##"), "mismatched mask falls back to bare digits")
}
