package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"serotonyl.ru/l2portal/internal/common"
	"serotonyl.ru/l2portal/internal/config"
	"serotonyl.ru/l2portal/internal/notify"
)

// mockRepository — мок хранилища аукционов.
type mockRepository struct {
	mock.Mock
}

var _ repository = (*mockRepository)(nil)

func (m *mockRepository) Create(ctx context.Context, a *Auction) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Auction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Auction), args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, status Status, limit int) ([]*Auction, error) {
	args := m.Called(ctx, status, limit)
	return args.Get(0).([]*Auction), args.Error(1)
}

func (m *mockRepository) ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockRepository) PlaceBid(ctx context.Context, auctionID, bidderUserID int64, bidderCharacter string, amount decimal.Decimal, now time.Time) (*PlaceBidResult, error) {
	args := m.Called(ctx, auctionID, bidderUserID, bidderCharacter, amount, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PlaceBidResult), args.Error(1)
}

func (m *mockRepository) Finish(ctx context.Context, auctionID int64, now time.Time) (*FinishResult, error) {
	args := m.Called(ctx, auctionID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FinishResult), args.Error(1)
}

func (m *mockRepository) Cancel(ctx context.Context, auctionID, sellerUserID int64, now time.Time) (*CancelResult, error) {
	args := m.Called(ctx, auctionID, sellerUserID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CancelResult), args.Error(1)
}

func (m *mockRepository) Bids(ctx context.Context, auctionID int64) ([]*Bid, error) {
	args := m.Called(ctx, auctionID)
	return args.Get(0).([]*Bid), args.Error(1)
}

// mockNotifier записывает отправленные уведомления.
type mockNotifier struct {
	sent []sentNote
}

type sentNote struct {
	userID int64
	text   string
}

var _ notify.Notifier = (*mockNotifier)(nil)

func newMockNotifier() *mockNotifier {
	return &mockNotifier{}
}

func (n *mockNotifier) Notify(_ context.Context, userID int64, text string) {
	n.sent = append(n.sent, sentNote{userID: userID, text: text})
}

func testConfig() *config.Config {
	return &config.Config{AuctionMaxDurationHours: 168}
}

func TestCreateValidation(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, newMockNotifier(), testConfig())
	ctx := context.Background()

	base := CreateParams{
		SellerUserID:    1,
		SellerCharacter: "Shilen",
		ItemID:          6656,
		Quantity:        1,
		StartingBid:     dec("50.00"),
		EndTime:         time.Now().Add(24 * time.Hour),
	}

	t.Run("нулевая стартовая цена", func(t *testing.T) {
		p := base
		p.StartingBid = decimal.Zero
		_, err := svc.Create(ctx, p)
		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	})

	t.Run("нулевое количество", func(t *testing.T) {
		p := base
		p.Quantity = 0
		_, err := svc.Create(ctx, p)
		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	})

	t.Run("время окончания в прошлом", func(t *testing.T) {
		p := base
		p.EndTime = time.Now().Add(-time.Hour)
		_, err := svc.Create(ctx, p)
		assert.Error(t, err)
	})

	t.Run("длительность выше лимита", func(t *testing.T) {
		p := base
		p.EndTime = time.Now().Add(200 * time.Hour)
		_, err := svc.Create(ctx, p)
		assert.Error(t, err)
	})

	repo.AssertNotCalled(t, "Create")
}

func TestCreateHappyPath(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, newMockNotifier(), testConfig())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *Auction) bool {
		return a.Status == StatusPending && a.CurrentBid == nil
	})).Return(nil)

	a, err := svc.Create(context.Background(), CreateParams{
		SellerUserID:    1,
		SellerCharacter: "Shilen",
		ItemID:          6656,
		Quantity:        2,
		StartingBid:     dec("50.00"),
		EndTime:         time.Now().Add(24 * time.Hour),
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)
	repo.AssertExpectations(t)
}

func TestPlaceBidNotifiesOutbidLeader(t *testing.T) {
	repo := new(mockRepository)
	notifier := newMockNotifier()
	svc := NewService(repo, notifier, testConfig())

	outbid := int64(42)
	refunded := dec("100.00")
	repo.On("PlaceBid", mock.Anything, int64(5), int64(7), "Baium", dec("150.00"), mock.Anything).
		Return(&PlaceBidResult{
			Bid:            &Bid{ID: 3, AuctionID: 5, BidderUserID: 7, Amount: dec("150.00")},
			OutbidUserID:   &outbid,
			RefundedAmount: &refunded,
		}, nil)

	bid, err := svc.PlaceBid(context.Background(), 5, 7, "Baium", dec("150.00"))
	assert.NoError(t, err)
	assert.Equal(t, int64(3), bid.ID)

	// Перебитый лидер получает уведомление о возврате
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, outbid, notifier.sent[0].userID)
	assert.Contains(t, notifier.sent[0].text, "100.00")
	assert.Contains(t, notifier.sent[0].text, "#5")
}

func TestPlaceBidFirstBidNoNotification(t *testing.T) {
	repo := new(mockRepository)
	notifier := newMockNotifier()
	svc := NewService(repo, notifier, testConfig())

	repo.On("PlaceBid", mock.Anything, int64(5), int64(7), "Baium", dec("100.00"), mock.Anything).
		Return(&PlaceBidResult{Bid: &Bid{ID: 1}}, nil)

	_, err := svc.PlaceBid(context.Background(), 5, 7, "Baium", dec("100.00"))
	assert.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestPlaceBidRejectsNonPositiveAmount(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, newMockNotifier(), testConfig())

	_, err := svc.PlaceBid(context.Background(), 5, 7, "Baium", decimal.Zero)
	assert.ErrorIs(t, err, common.ErrInvalidBid)
	repo.AssertNotCalled(t, "PlaceBid")
}

func TestFinishNotifiesWinner(t *testing.T) {
	repo := new(mockRepository)
	notifier := newMockNotifier()
	svc := NewService(repo, notifier, testConfig())

	winner := int64(7)
	sold := dec("150.00")
	repo.On("Finish", mock.Anything, int64(5), mock.Anything).
		Return(&FinishResult{AuctionID: 5, Status: StatusFinished, WinnerUserID: &winner, SoldAmount: &sold}, nil)

	result, err := svc.Finish(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, StatusFinished, result.Status)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, winner, notifier.sent[0].userID)
}

func TestFinishWithoutBidsNoNotification(t *testing.T) {
	repo := new(mockRepository)
	notifier := newMockNotifier()
	svc := NewService(repo, notifier, testConfig())

	repo.On("Finish", mock.Anything, int64(5), mock.Anything).
		Return(&FinishResult{AuctionID: 5, Status: StatusExpired}, nil)

	result, err := svc.Finish(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, StatusExpired, result.Status)
	assert.Empty(t, notifier.sent)
}

func TestCancelNotifiesRefundedBidder(t *testing.T) {
	repo := new(mockRepository)
	notifier := newMockNotifier()
	svc := NewService(repo, notifier, testConfig())

	bidder := int64(7)
	refunded := dec("100.00")
	repo.On("Cancel", mock.Anything, int64(5), int64(1), mock.Anything).
		Return(&CancelResult{AuctionID: 5, RefundedUserID: &bidder, RefundedAmount: &refunded}, nil)

	_, err := svc.Cancel(context.Background(), 5, 1)
	assert.NoError(t, err)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, bidder, notifier.sent[0].userID)
	assert.Contains(t, notifier.sent[0].text, "100.00")
}

// TestSweepExpiredIsolatesFailures — один проблемный лот не срывает
// обработку остальных.
func TestSweepExpiredIsolatesFailures(t *testing.T) {
	repo := new(mockRepository)
	notifier := newMockNotifier()
	svc := NewService(repo, notifier, testConfig())

	repo.On("ListExpiredIDs", mock.Anything, mock.Anything).Return([]int64{1, 2, 3}, nil)
	repo.On("Finish", mock.Anything, int64(1), mock.Anything).
		Return(&FinishResult{AuctionID: 1, Status: StatusExpired}, nil)
	repo.On("Finish", mock.Anything, int64(2), mock.Anything).
		Return(nil, errors.New("ошибка БД"))
	repo.On("Finish", mock.Anything, int64(3), mock.Anything).
		Return(&FinishResult{AuctionID: 3, Status: StatusExpired}, nil)

	err := svc.SweepExpired(context.Background())
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

// Повторный обход уже завершённых лотов безопасен.
func TestSweepExpiredIdempotent(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, newMockNotifier(), testConfig())

	repo.On("ListExpiredIDs", mock.Anything, mock.Anything).Return([]int64{9}, nil)
	repo.On("Finish", mock.Anything, int64(9), mock.Anything).
		Return(nil, common.ErrAuctionClosed)

	assert.NoError(t, svc.SweepExpired(context.Background()))
}

func TestSweepExpiredEmpty(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, newMockNotifier(), testConfig())

	repo.On("ListExpiredIDs", mock.Anything, mock.Anything).Return([]int64{}, nil)

	assert.NoError(t, svc.SweepExpired(context.Background()))
	repo.AssertNotCalled(t, "Finish")
}
