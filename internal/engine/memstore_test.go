package engine

import (
	"context"
	"sync"

	"github.com/iliyamo/game-room-reservation/internal/model"
)

// memStores is an in-memory implementation of Stores plus Atomic used
// across the engine tests. All maps are keyed by ID; InTx just runs fn
// under a mutex, which is enough because the engine only needs writes
// to be applied together and tests are single-threaded unless stated.
type memStores struct {
	mu sync.Mutex

	sessions     map[uint64]*model.Session
	reservations map[uint64]*model.Reservation
	clients      map[uint64]*model.Client
	referrers    map[uint64]*model.Referrer
	posts        map[uint64]*model.Post
	games        map[uint64]*model.Game
	products     map[uint64]*model.Product
	promotions   map[uint64]*model.Promotion
	links        map[[2]uint64]bool // promotionID, productID
	payments     []model.Payment

	nextSessionID     uint64
	nextReservationID uint64
}

func newMemStores() *memStores {
	return &memStores{
		sessions:     map[uint64]*model.Session{},
		reservations: map[uint64]*model.Reservation{},
		clients:      map[uint64]*model.Client{},
		referrers:    map[uint64]*model.Referrer{},
		posts:        map[uint64]*model.Post{},
		games:        map[uint64]*model.Game{},
		products:     map[uint64]*model.Product{},
		promotions:   map[uint64]*model.Promotion{},
		links:        map[[2]uint64]bool{},
	}
}

func (m *memStores) view() Stores {
	return Stores{
		Sessions:     (*memSessions)(m),
		Reservations: (*memReservations)(m),
		Clients:      (*memClients)(m),
		Referrers:    (*memReferrers)(m),
		Posts:        (*memPosts)(m),
		Games:        (*memGames)(m),
		Catalog:      (*memCatalog)(m),
		Payments:     (*memPayments)(m),
	}
}

func (m *memStores) InTx(ctx context.Context, fn func(s Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.view())
}

type memSessions memStores

func (m *memSessions) SessionByID(ctx context.Context, id uint64) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) ActiveByPost(ctx context.Context, postID uint64) (*model.Session, error) {
	for _, s := range m.sessions {
		if s.PostID == postID && s.Status == model.StatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memSessions) ActiveByClient(ctx context.Context, clientID uint64) (*model.Session, error) {
	for _, s := range m.sessions {
		if s.ClientID == clientID && s.Status == model.StatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memSessions) PausedByClient(ctx context.Context, clientID uint64) (*model.Session, error) {
	for _, s := range m.sessions {
		if s.ClientID == clientID && s.Status == model.StatusPaused {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memSessions) CreateSession(ctx context.Context, s *model.Session) error {
	m.nextSessionID++
	s.ID = m.nextSessionID
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessions) SaveSession(ctx context.Context, s *model.Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

type memReservations memStores

func (m *memReservations) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReservations) CreateReservation(ctx context.Context, r *model.Reservation) error {
	m.nextReservationID++
	r.ID = m.nextReservationID
	cp := *r
	m.reservations[r.ID] = &cp
	return nil
}

func (m *memReservations) SaveReservation(ctx context.Context, r *model.Reservation) error {
	if _, ok := m.reservations[r.ID]; !ok {
		return ErrReservationNotFound
	}
	cp := *r
	m.reservations[r.ID] = &cp
	return nil
}

type memClients memStores

func (m *memClients) ClientByID(ctx context.Context, id uint64) (*model.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memClients) AddLoyaltyPoints(ctx context.Context, clientID uint64, points uint32) error {
	c, ok := m.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}
	c.LoyaltyPoints += points
	return nil
}

type memReferrers memStores

func (m *memReferrers) ReferrerByCode(ctx context.Context, code string) (*model.Referrer, error) {
	for _, r := range m.referrers {
		if r.Code == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrReferrerNotFound
}

func (m *memReferrers) AddReferralPoints(ctx context.Context, referrerID uint64, points uint32) error {
	r, ok := m.referrers[referrerID]
	if !ok {
		return ErrReferrerNotFound
	}
	r.ReferralPoints += points
	return nil
}

type memPosts memStores

func (m *memPosts) PostByID(ctx context.Context, id uint64) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

type memGames memStores

func (m *memGames) GameByID(ctx context.Context, id uint64) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

type memCatalog memStores

func (m *memCatalog) ProductByID(ctx context.Context, id uint64) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		cp.OriginalPrice = &v
	}
	return &cp, nil
}

func (m *memCatalog) PromotionByID(ctx context.Context, id uint64) (*model.Promotion, error) {
	p, ok := m.promotions[id]
	if !ok {
		return nil, ErrPromotionNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memCatalog) PromotionsForProduct(ctx context.Context, productID uint64) ([]model.Promotion, error) {
	var out []model.Promotion
	for key := range m.links {
		if key[1] != productID {
			continue
		}
		if p, ok := m.promotions[key[0]]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memCatalog) LinkPromotionProduct(ctx context.Context, promotionID, productID uint64) error {
	m.links[[2]uint64{promotionID, productID}] = true
	return nil
}

func (m *memCatalog) UnlinkPromotionProduct(ctx context.Context, promotionID, productID uint64) error {
	delete(m.links, [2]uint64{promotionID, productID})
	return nil
}

func (m *memCatalog) SaveProductPrice(ctx context.Context, p *model.Product) error {
	stored, ok := m.products[p.ID]
	if !ok {
		return ErrProductNotFound
	}
	stored.Price = p.Price
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		stored.OriginalPrice = &v
	} else {
		stored.OriginalPrice = nil
	}
	return nil
}

type memPayments memStores

func (m *memPayments) CreatePayment(ctx context.Context, p *model.Payment) error {
	p.ID = uint64(len(m.payments) + 1)
	m.payments = append(m.payments, *p)
	return nil
}
