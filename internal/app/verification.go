package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/zippay/wallet-service/internal/domain"
	"github.com/zippay/wallet-service/internal/store"
)

// VerificationGate answers whether the presented proof authorizes a payment
// for the given user. It is an external trust boundary: the processor only
// consumes the verdict and does not inspect credentials itself.
type VerificationGate interface {
	Verify(ctx context.Context, userID uuid.UUID, proof domain.AuthProof) error
}

// BiometricVerifier validates a device-issued biometric attestation token.
type BiometricVerifier interface {
	VerifyToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)
}

// AccountVerificationGate verifies PIN proofs against the bcrypt hash stored
// on the account and delegates biometric proofs to the configured verifier.
type AccountVerificationGate struct {
	repo      store.Repository
	biometric BiometricVerifier
}

func NewAccountVerificationGate(repo store.Repository, biometric BiometricVerifier) *AccountVerificationGate {
	return &AccountVerificationGate{repo: repo, biometric: biometric}
}

func (g *AccountVerificationGate) Verify(ctx context.Context, userID uuid.UUID, proof domain.AuthProof) error {
	switch proof.Method {
	case domain.AuthMethodPIN:
		if proof.PIN == "" {
			return fmt.Errorf("%w: pin is required", ErrAuthentication)
		}
		account, err := g.repo.FindAccountByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrAccountNotFound) {
				return ErrAuthentication
			}
			return fmt.Errorf("failed to load account for verification: %w", err)
		}
		if account.PINHash == "" {
			return fmt.Errorf("%w: no pin set for account", ErrAuthentication)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(account.PINHash), []byte(proof.PIN)); err != nil {
			return fmt.Errorf("%w: incorrect pin", ErrAuthentication)
		}
		return nil
	case domain.AuthMethodBiometric:
		if proof.BiometricToken == "" {
			return fmt.Errorf("%w: biometric token is required", ErrAuthentication)
		}
		if g.biometric == nil {
			return fmt.Errorf("%w: biometric verification unavailable", ErrAuthentication)
		}
		ok, err := g.biometric.VerifyToken(ctx, userID, proof.BiometricToken)
		if err != nil {
			return fmt.Errorf("biometric verification error: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: biometric attestation rejected", ErrAuthentication)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported auth method %q", ErrAuthentication, proof.Method)
	}
}

// HashPIN produces the bcrypt hash stored on accounts.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hash), nil
}

// DeviceBiometricVerifier stands in for a device attestation service. Any
// non-empty token is accepted; real deployments swap in a remote verifier.
type DeviceBiometricVerifier struct{}

func (DeviceBiometricVerifier) VerifyToken(_ context.Context, _ uuid.UUID, token string) (bool, error) {
	return token != "", nil
}
