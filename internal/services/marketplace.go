package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"auction-house/internal/domain"
	"auction-house/internal/repositories"
	"auction-house/pkg/logger"
	"auction-house/pkg/utils"
)

// Marketplace wires the repositories and the auction engine together and
// hands out role services bound to a user.
type Marketplace struct {
	store  domain.ObjectStore
	repos  *repositories.Repositories
	engine *AuctionEngine
	log    logger.Logger
	now    func() time.Time
}

func NewMarketplace(store domain.ObjectStore, log logger.Logger) *Marketplace {
	repos := repositories.New(store)
	return &Marketplace{
		store:  store,
		repos:  repos,
		engine: NewAuctionEngine(repos, log),
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *Marketplace) Auctioneer(user *domain.User) *Auctioneer {
	return &Auctioneer{member{user: user, market: m}}
}

func (m *Marketplace) Participant(user *domain.User) *Participant {
	return &Participant{member{user: user, market: m}}
}

// RegisterUser creates and persists a new user with the given role.
func (m *Marketplace) RegisterUser(ctx context.Context, role domain.UserRole) (*domain.User, error) {
	if role != domain.RoleAuctioneer && role != domain.RoleParticipant {
		return nil, fmt.Errorf("unsupported user role %d", role)
	}

	user := domain.NewUser(utils.GenerateID("user"), role, m.now())
	if err := m.repos.Users.Save(ctx, user); err != nil {
		return nil, err
	}

	m.log.Info("User registered", "user_id", user.ID, "role", role.String())
	return user, nil
}

func (m *Marketplace) RegisterAuctioneer(ctx context.Context) (*domain.User, error) {
	return m.RegisterUser(ctx, domain.RoleAuctioneer)
}

func (m *Marketplace) RegisterParticipant(ctx context.Context) (*domain.User, error) {
	return m.RegisterUser(ctx, domain.RoleParticipant)
}

func (m *Marketplace) Auctioneers(ctx context.Context) ([]*domain.User, error) {
	return m.Users(ctx, domain.RoleAuctioneer)
}

func (m *Marketplace) Participants(ctx context.Context) ([]*domain.User, error) {
	return m.Users(ctx, domain.RoleParticipant)
}

// User loads a user of any role.
func (m *Marketplace) User(ctx context.Context, id string) (*domain.User, bool, error) {
	return m.repos.Users.One(ctx, id)
}

// Users lists every user with the given role. Both roles share the user
// category, so this is a full load followed by a role filter.
func (m *Marketplace) Users(ctx context.Context, role domain.UserRole) ([]*domain.User, error) {
	users, err := m.repos.Users.All(ctx, nil)
	if err != nil {
		return nil, err
	}

	matching := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u.Role == role {
			matching = append(matching, u)
		}
	}
	slices.SortFunc(matching, func(a, b *domain.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return matching, nil
}

// FindUser loads a user and reports ok=false when it is missing or has a
// different role.
func (m *Marketplace) FindUser(ctx context.Context, id string, role domain.UserRole) (*domain.User, bool, error) {
	user, ok, err := m.repos.Users.One(ctx, id)
	if err != nil || !ok {
		return nil, false, err
	}
	if user.Role != role {
		return nil, false, nil
	}
	return user, true, nil
}

// ClearAll wipes every category of the backing store.
func (m *Marketplace) ClearAll(ctx context.Context) error {
	if err := m.store.ClearAll(ctx); err != nil {
		return err
	}
	m.log.Warn("Object store cleared")
	return nil
}

// member holds what every role shares.
type member struct {
	user   *domain.User
	market *Marketplace
}

func (b member) ID() string {
	return b.user.ID
}

func (b member) User() *domain.User {
	return b.user
}

// QueryItemSummary joins the item with its current (non failed) auction and
// that auction's prevailing bid.
func (b member) QueryItemSummary(ctx context.Context, itemName string) (*domain.Result, error) {
	repos := b.market.repos

	item, ok, err := repos.Items.One(ctx, itemName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.Failure(domain.MsgItemNotFound), nil
	}

	summary := &domain.ItemSummary{Item: item.View()}

	// Failed auctions are left out of the summary; an available item has none worth showing.
	if item.Status != domain.ItemAvailable {
		auctions, err := repos.Auctions.All(ctx, auctionsForItem(itemName, notFailed))
		if err != nil {
			return nil, err
		}

		if auction := latest(auctions); auction != nil {
			view := auction.View()
			summary.Auction = &view

			if bidID := auction.PrevailingBidID(); bidID != "" {
				bid, ok, err := repos.Bids.One(ctx, bidID)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, fmt.Errorf("%w: bid %s of auction %s is missing", domain.ErrIntegrity, bidID, auction.ID)
				}
				bidView := bid.View()
				summary.PrevailingBid = &bidView
			}
		}
	}

	result := domain.Success()
	result.Summary = summary
	return result, nil
}

func latest(auctions []*domain.Auction) *domain.Auction {
	var newest *domain.Auction
	for _, a := range auctions {
		if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	return newest
}

func sortAuctions(auctions []*domain.Auction) {
	slices.SortFunc(auctions, func(a, b *domain.Auction) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

func auctionViews(auctions []*domain.Auction) []domain.AuctionView {
	sortAuctions(auctions)
	views := make([]domain.AuctionView, 0, len(auctions))
	for _, a := range auctions {
		views = append(views, a.View())
	}
	return views
}

func bidViews(bids []*domain.Bid) []domain.BidView {
	views := make([]domain.BidView, 0, len(bids))
	for _, b := range bids {
		views = append(views, b.View())
	}
	return views
}
