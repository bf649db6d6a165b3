package transport

import (
	"context"
	"net/http"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

// AuthResult is the API's response to a successful login or
// registration verification.
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and user summary. The caller
// decides whether to store the result.
func (c *Client) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RegistrationInput struct {
	HospitalName string `json:"hospitalName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Address      string `json:"address"`
	PhoneNumber  string `json:"phoneNumber"`
}

// RegistrationSession ties the pending signup to the OTP emailed to
// the hospital address.
type RegistrationSession struct {
	SessionID string `json:"sessionId"`
}

// InitiateRegistration starts the signup flow; the account only exists
// once VerifyRegistration succeeds.
func (c *Client) InitiateRegistration(ctx context.Context, in RegistrationInput) (*RegistrationSession, error) {
	var out RegistrationSession
	if err := c.do(ctx, http.MethodPost, "/auth/initiate-registration", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type verifyRegistrationRequest struct {
	SessionID string `json:"sessionId"`
	OTP       string `json:"otp"`
}

// VerifyRegistration completes signup with the one-time passcode and
// returns a full session, logging the new account in.
func (c *Client) VerifyRegistration(ctx context.Context, sessionID, otp string) (*AuthResult, error) {
	var out AuthResult
	req := verifyRegistrationRequest{SessionID: sessionID, OTP: otp}
	if err := c.do(ctx, http.MethodPost, "/auth/verify-registration", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type resendOTPRequest struct {
	SessionID string `json:"sessionId"`
}

// ResendRegistrationOTP asks the server to email a fresh passcode for
// a pending registration session.
func (c *Client) ResendRegistrationOTP(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/auth/resend-registration-otp", resendOTPRequest{SessionID: sessionID}, nil)
}

// Profile reads the organization profile of the authenticated account.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfileUpdate carries only the fields being changed; nil-equivalent
// empty strings are dropped by omitempty.
type ProfileUpdate struct {
	HospitalName string `json:"hospitalName,omitempty"`
	Email        string `json:"email,omitempty"`
	Address      string `json:"address,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
