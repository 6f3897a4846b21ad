package fees

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linkpay/linkpay/internal/domain/feeprofile"
	"github.com/linkpay/linkpay/internal/domain/transaction"
)

type MockFeeProfileRepository struct {
	mock.Mock
}

func (m *MockFeeProfileRepository) GetByProfileID(ctx context.Context, profileID string) (*feeprofile.Profile, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*feeprofile.Profile), args.Error(1)
}

func (m *MockFeeProfileRepository) Upsert(ctx context.Context, profile *feeprofile.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ApplyUpdate(ctx context.Context, id uuid.UUID, update transaction.Update) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockTransactionRepository) CountPaidByEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) GetByPaymentLinkID(ctx context.Context, linkID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, linkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) GetRate(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func defaultTestProfile() *feeprofile.Profile {
	fixedAmount := int64(30)
	cardRate := 0.029
	fxRate := 0.015
	return &feeprofile.Profile{
		ProfileID: feeprofile.DefaultProfileID,
		Rules: []feeprofile.Rule{
			{Type: feeprofile.RuleTypeFixedFee, Config: feeprofile.RuleConfig{AmountInCents: &fixedAmount, Description: "Processing Fee"}},
			{Type: feeprofile.RuleTypePercentageFee, Config: feeprofile.RuleConfig{Rate: &cardRate, Description: "Card Network Fee"}},
			{Type: feeprofile.RuleTypePercentageFee, Config: feeprofile.RuleConfig{Rate: &fxRate, Description: "FX Conversion Fee"}},
		},
		Incentives: []feeprofile.Incentive{
			{Type: feeprofile.IncentiveTypeFirstNTransactions, Config: feeprofile.IncentiveConfig{N: 3, DiscountPercentage: 1.0}},
		},
	}
}

func TestCalculator_Calculate(t *testing.T) {
	ctx := context.Background()

	t.Run("StandardQuote", func(t *testing.T) {
		mockProfiles := new(MockFeeProfileRepository)
		mockTransactions := new(MockTransactionRepository)
		mockRates := new(MockRateProvider)
		calc := NewCalculator(testLogger(), mockProfiles, mockTransactions, mockRates)

		mockProfiles.On("GetByProfileID", mock.Anything, feeprofile.DefaultProfileID).Return(defaultTestProfile(), nil).Once()
		mockRates.On("GetRate", mock.Anything).Return(20.0, nil).Once()
		mockTransactions.On("CountPaidByEmail", mock.Anything, "repeat@example.com").Return(int64(5), nil).Once()

		result, err := calc.Calculate(ctx, 10000, "repeat@example.com", "")

		assert.NoError(t, err)
		assert.Equal(t, int64(10000), result.BaseAmountInCents)
		assert.Equal(t, int64(470), result.Fees.TotalFees)
		assert.Equal(t, int64(10470), result.TotalAmountInCents)
		assert.Equal(t, int64(200000), result.DestinationAmountMXN)
		assert.Equal(t, 20.0, result.FxRate)

		amounts := make([]int64, 0, len(result.Fees.Breakdown))
		for _, item := range result.Fees.Breakdown {
			amounts = append(amounts, item.Amount)
		}
		assert.Equal(t, []int64{30, 290, 150}, amounts)
		mockProfiles.AssertExpectations(t)
		mockTransactions.AssertExpectations(t)
		mockRates.AssertExpectations(t)
	})

	t.Run("IncentiveEligibleCustomer", func(t *testing.T) {
		mockProfiles := new(MockFeeProfileRepository)
		mockTransactions := new(MockTransactionRepository)
		mockRates := new(MockRateProvider)
		calc := NewCalculator(testLogger(), mockProfiles, mockTransactions, mockRates)

		mockProfiles.On("GetByProfileID", mock.Anything, feeprofile.DefaultProfileID).Return(defaultTestProfile(), nil).Once()
		mockRates.On("GetRate", mock.Anything).Return(20.0, nil).Once()
		mockTransactions.On("CountPaidByEmail", mock.Anything, "new@example.com").Return(int64(1), nil).Once()

		result, err := calc.Calculate(ctx, 10000, "new@example.com", "")

		assert.NoError(t, err)
		assert.Equal(t, int64(0), result.Fees.TotalFees)
		assert.Equal(t, int64(10000), result.TotalAmountInCents)
		assert.Len(t, result.Fees.Breakdown, 3)
		for _, item := range result.Fees.Breakdown {
			assert.Equal(t, int64(0), item.Amount)
			assert.NotEmpty(t, item.Description)
		}
	})

	t.Run("EmptyEmailSkipsHistoryLookup", func(t *testing.T) {
		mockProfiles := new(MockFeeProfileRepository)
		mockTransactions := new(MockTransactionRepository)
		mockRates := new(MockRateProvider)
		calc := NewCalculator(testLogger(), mockProfiles, mockTransactions, mockRates)

		mockProfiles.On("GetByProfileID", mock.Anything, feeprofile.DefaultProfileID).Return(defaultTestProfile(), nil).Once()
		mockRates.On("GetRate", mock.Anything).Return(20.0, nil).Once()

		result, err := calc.Calculate(ctx, 10000, "", "")

		assert.NoError(t, err)
		// Count of zero qualifies for the first-N incentive.
		assert.Equal(t, int64(0), result.Fees.TotalFees)
		mockTransactions.AssertNotCalled(t, "CountPaidByEmail", mock.Anything, mock.Anything)
	})

	t.Run("UnknownProfileFallsBackToDefault", func(t *testing.T) {
		mockProfiles := new(MockFeeProfileRepository)
		mockTransactions := new(MockTransactionRepository)
		mockRates := new(MockRateProvider)
		calc := NewCalculator(testLogger(), mockProfiles, mockTransactions, mockRates)

		mockProfiles.On("GetByProfileID", mock.Anything, "ENTERPRISE_EUR").
			Return(nil, feeprofile.ErrProfileNotFound{ProfileID: "ENTERPRISE_EUR"}).Once()
		mockProfiles.On("GetByProfileID", mock.Anything, feeprofile.DefaultProfileID).Return(defaultTestProfile(), nil).Once()
		mockRates.On("GetRate", mock.Anything).Return(20.0, nil).Once()
		mockTransactions.On("CountPaidByEmail", mock.Anything, "repeat@example.com").Return(int64(5), nil).Once()

		result, err := calc.Calculate(ctx, 10000, "repeat@example.com", "ENTERPRISE_EUR")

		assert.NoError(t, err)
		assert.Equal(t, int64(470), result.Fees.TotalFees)
		mockProfiles.AssertExpectations(t)
	})

	t.Run("DefaultProfileMissingFails", func(t *testing.T) {
		mockProfiles := new(MockFeeProfileRepository)
		mockTransactions := new(MockTransactionRepository)
		mockRates := new(MockRateProvider)
		calc := NewCalculator(testLogger(), mockProfiles, mockTransactions, mockRates)

		mockProfiles.On("GetByProfileID", mock.Anything, feeprofile.DefaultProfileID).
			Return(nil, feeprofile.ErrProfileNotFound{ProfileID: feeprofile.DefaultProfileID}).Once()
		mockRates.On("GetRate", mock.Anything).Return(20.0, nil).Maybe()
		mockTransactions.On("CountPaidByEmail", mock.Anything, "repeat@example.com").Return(int64(5), nil).Maybe()

		result, err := calc.Calculate(ctx, 10000, "repeat@example.com", "")

		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("FxRateFailureFails", func(t *testing.T) {
		mockProfiles := new(MockFeeProfileRepository)
		mockTransactions := new(MockTransactionRepository)
		mockRates := new(MockRateProvider)
		calc := NewCalculator(testLogger(), mockProfiles, mockTransactions, mockRates)

		mockProfiles.On("GetByProfileID", mock.Anything, feeprofile.DefaultProfileID).Return(defaultTestProfile(), nil).Maybe()
		mockRates.On("GetRate", mock.Anything).Return(0.0, errors.New("provider down")).Once()
		mockTransactions.On("CountPaidByEmail", mock.Anything, "repeat@example.com").Return(int64(5), nil).Maybe()

		result, err := calc.Calculate(ctx, 10000, "repeat@example.com", "")

		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("MisconfiguredRuleAborts", func(t *testing.T) {
		mockProfiles := new(MockFeeProfileRepository)
		mockTransactions := new(MockTransactionRepository)
		mockRates := new(MockRateProvider)
		calc := NewCalculator(testLogger(), mockProfiles, mockTransactions, mockRates)

		broken := &feeprofile.Profile{
			ProfileID: feeprofile.DefaultProfileID,
			Rules: []feeprofile.Rule{
				{Type: feeprofile.RuleTypePercentageFee, Config: feeprofile.RuleConfig{Description: "No rate"}},
			},
		}
		mockProfiles.On("GetByProfileID", mock.Anything, feeprofile.DefaultProfileID).Return(broken, nil).Once()
		mockRates.On("GetRate", mock.Anything).Return(20.0, nil).Once()
		mockTransactions.On("CountPaidByEmail", mock.Anything, "repeat@example.com").Return(int64(5), nil).Once()

		result, err := calc.Calculate(ctx, 10000, "repeat@example.com", "")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.IsType(t, ErrInvalidRuleConfig{}, err)
	})

	t.Run("UnknownRuleTypeSkipped", func(t *testing.T) {
		mockProfiles := new(MockFeeProfileRepository)
		mockTransactions := new(MockTransactionRepository)
		mockRates := new(MockRateProvider)
		calc := NewCalculator(testLogger(), mockProfiles, mockTransactions, mockRates)

		fixedAmount := int64(30)
		profile := &feeprofile.Profile{
			ProfileID: feeprofile.DefaultProfileID,
			Rules: []feeprofile.Rule{
				{Type: feeprofile.RuleType("LOYALTY_FEE"), Config: feeprofile.RuleConfig{}},
				{Type: feeprofile.RuleTypeFixedFee, Config: feeprofile.RuleConfig{AmountInCents: &fixedAmount, Description: "Processing Fee"}},
			},
		}
		mockProfiles.On("GetByProfileID", mock.Anything, feeprofile.DefaultProfileID).Return(profile, nil).Once()
		mockRates.On("GetRate", mock.Anything).Return(20.0, nil).Once()
		mockTransactions.On("CountPaidByEmail", mock.Anything, "repeat@example.com").Return(int64(5), nil).Once()

		result, err := calc.Calculate(ctx, 10000, "repeat@example.com", "")

		assert.NoError(t, err)
		assert.Len(t, result.Fees.Breakdown, 1)
		assert.Equal(t, int64(30), result.Fees.TotalFees)
	})
}
