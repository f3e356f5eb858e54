package auth_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/auth"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AuthService Suite")
}

// Mock account repository for testing
type mockAccountRepository struct {
	accounts map[string]*auth.Account
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{accounts: make(map[string]*auth.Account)}
}

func (m *mockAccountRepository) GetByEmail(email string) (*auth.Account, error) {
	account, exists := m.accounts[email]
	if !exists {
		return nil, internal.ErrInvalidCredentials
	}
	return account, nil
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		mockRepo *mockAccountRepository
		tokens   *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		mockRepo = newMockAccountRepository()
		tokens = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", time.Minute, time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(mockRepo, tokens, logger)

		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		mockRepo.accounts["a.martin@courrier.local"] = &auth.Account{
			ID:           1,
			Email:        "a.martin@courrier.local",
			PasswordHash: string(hash),
			UserID:       42,
		}
	})

	Describe("Authenticate", func() {
		It("issues a token pair whose subject is the directory user", func() {
			pair, err := service.Authenticate(auth.LoginDTO{
				Email:    "a.martin@courrier.local",
				Password: "s3cret",
			})
			Expect(err).NotTo(HaveOccurred())

			userID, err := service.ResolveCaller(pair.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(userID).To(Equal(int64(42)))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "a.martin@courrier.local",
				Password: "wrong",
			})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects an unknown email the same way", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@courrier.local",
				Password: "s3cret",
			})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects an empty payload", func() {
			_, err := service.Authenticate(auth.LoginDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Refresh", func() {
		It("rotates the pair from a valid refresh token", func() {
			pair, err := service.Authenticate(auth.LoginDTO{
				Email:    "a.martin@courrier.local",
				Password: "s3cret",
			})
			Expect(err).NotTo(HaveOccurred())

			fresh, err := service.Refresh(pair.RefreshToken)
			Expect(err).NotTo(HaveOccurred())

			userID, err := service.ResolveCaller(fresh.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(userID).To(Equal(int64(42)))
		})

		It("rejects an access token used as a refresh token", func() {
			pair, err := service.Authenticate(auth.LoginDTO{
				Email:    "a.martin@courrier.local",
				Password: "s3cret",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Refresh(pair.AccessToken)
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("rejects garbage", func() {
			_, err := service.Refresh("not-a-token")
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})
	})

	Describe("ResolveCaller", func() {
		It("rejects a token signed with another secret", func() {
			other := auth.NewJWTTokenGenerator("evil", "evil", time.Minute, time.Hour)
			forged, err := other.GenerateAccessToken(42)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ResolveCaller(forged)
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("rejects an expired token", func() {
			shortLived := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", time.Minute, time.Hour)
			// the constructor floors non-positive TTLs, so force expiry on
			// the field directly
			shortLived.AccessTokenTTL = -time.Minute
			expired, err := shortLived.GenerateAccessToken(42)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ResolveCaller(expired)
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})
	})
})
