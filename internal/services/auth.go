package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omengineers/booking-backend/internal/models"
	"github.com/omengineers/booking-backend/internal/storage"
	"github.com/omengineers/booking-backend/internal/utils"
)

const tokenTTL = 30 * 24 * time.Hour

// Resolution outcomes after a successful phone verification
const (
	OutcomeProfileCompletion = "profile_completion"
	OutcomeAuthenticated     = "authenticated"
	OutcomeAccountSelection  = "account_selection"
)

var (
	// ErrAuthRequired is returned when no credential resolves to a customer
	ErrAuthRequired = errors.New("authentication required")
	// ErrAccessDenied is returned when a credential is valid but scoped
	// to a different customer
	ErrAccessDenied = errors.New("access denied")
)

// Resolution is the identity decision for a verified phone number
type Resolution struct {
	Outcome    string
	Customer   *models.Customer   // set when Outcome is authenticated or profile_completion
	Candidates []*models.Customer // set when Outcome is account_selection
}

type authClaims struct {
	CustomerID uint `json:"customer_id"`
	jwt.RegisteredClaims
}

// AuthService resolves verified phones to customer accounts and issues
// the session credentials used by every authenticated request.
type AuthService struct {
	store  storage.Store
	secret []byte
}

// NewAuthService creates a new auth service. The signing secret comes
// from SECRET_KEY.
func NewAuthService(store storage.Store) *AuthService {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		log.Println("⚠️  SECRET_KEY not set - using development default")
		secret = "om-engineers-dev-secret"
	}
	return &AuthService{store: store, secret: []byte(secret)}
}

// ResolveIdentity maps a verified phone number to the next onboarding
// step: no account yet, exactly one account, or a household phone shared
// by several accounts.
func (a *AuthService) ResolveIdentity(phone string) (*Resolution, error) {
	digits := utils.NormalizePhone(phone)
	customers, err := a.store.GetCustomersByPhone(digits)
	if err != nil {
		return nil, fmt.Errorf("customer lookup failed: %w", err)
	}

	switch len(customers) {
	case 0:
		// First login for this phone: create the account now so the
		// credential has a customer to bind to. The blank name routes
		// the client to profile completion.
		customer, err := a.store.CreateCustomer(&models.Customer{Phone: digits})
		if err != nil {
			return nil, fmt.Errorf("customer creation failed: %w", err)
		}
		return &Resolution{Outcome: OutcomeProfileCompletion, Customer: customer}, nil

	case 1:
		customer := customers[0]
		if !customer.IsProfileComplete() {
			return &Resolution{Outcome: OutcomeProfileCompletion, Customer: customer}, nil
		}
		now := time.Now()
		customer.LastLoginAt = &now
		if err := a.store.UpdateCustomer(customer); err != nil {
			log.Printf("Failed to record login time for customer %d: %v", customer.ID, err)
		}
		return &Resolution{Outcome: OutcomeAuthenticated, Customer: customer}, nil

	default:
		return &Resolution{Outcome: OutcomeAccountSelection, Candidates: customers}, nil
	}
}

// SelectAccount validates an explicit account choice from the
// account-selection step. The selected customer's stored phone must
// match the verified phone digit for digit.
func (a *AuthService) SelectAccount(customerID uint, verifiedPhone string) (*models.Customer, error) {
	customer, err := a.store.GetCustomer(customerID)
	if err == storage.ErrNotFound {
		return nil, ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}

	if customer.PhoneDigits() != utils.NormalizePhone(verifiedPhone) {
		return nil, ErrAccessDenied
	}

	now := time.Now()
	customer.LastLoginAt = &now
	if err := a.store.UpdateCustomer(customer); err != nil {
		log.Printf("Failed to record login time for customer %d: %v", customer.ID, err)
	}
	return customer, nil
}

// IssueToken mints a signed bearer token bound to the customer,
// valid for 30 days.
func (a *AuthService) IssueToken(customer *models.Customer) (string, error) {
	now := time.Now()
	claims := authClaims{
		CustomerID: customer.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", customer.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// IssueSelectionToken mints a short-lived token proving the phone was
// just verified, consumed by the account-selection step.
func (a *AuthService) IssueSelectionToken(phone string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "account-selection:" + utils.NormalizePhone(phone),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifySelectionToken validates a selection token and returns the
// verified phone digits it is bound to.
func (a *AuthService) VerifySelectionToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrAccessDenied
	}
	phone, ok := strings.CutPrefix(claims.Subject, "account-selection:")
	if !ok || phone == "" {
		return "", ErrAccessDenied
	}
	return phone, nil
}

// ResolveCredential maps a single credential value to its customer.
// The value may be a signed token or a durable auth key; both transports
// are accepted equivalently.
func (a *AuthService) ResolveCredential(value string) (*models.Customer, error) {
	if value == "" {
		return nil, ErrAuthRequired
	}

	if customerID, err := a.parseToken(value); err == nil {
		customer, err := a.store.GetCustomer(customerID)
		if err == storage.ErrNotFound {
			return nil, ErrAuthRequired
		}
		return customer, err
	}

	customer, err := a.store.GetCustomerByAuthKey(value)
	if err == storage.ErrNotFound {
		return nil, ErrAuthRequired
	}
	return customer, err
}

func (a *AuthService) parseToken(tokenString string) (uint, error) {
	var claims authClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.CustomerID == 0 {
		return 0, fmt.Errorf("invalid token")
	}
	return claims.CustomerID, nil
}
