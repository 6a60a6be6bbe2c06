package basket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/internal/inventory"
	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
	"github.com/lojasocial-app/lojasocial-backend/pkg/outbox"
	"github.com/lojasocial-app/lojasocial-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type apoiadoLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Apoiado, error)
}

// InventoryLedger is the reservation boundary the lifecycle calls into. Every
// method runs inside the caller's transaction so basket and product mutations
// commit or roll back together.
type InventoryLedger interface {
	Reserve(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error
	ReleaseOwned(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) (int64, error)
	Deliver(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error
}

type ledgerImpl struct{}

// NewInventoryLedger exposes the default reservation ledger implementation.
func NewInventoryLedger() InventoryLedger {
	return ledgerImpl{}
}

func (ledgerImpl) Reserve(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error {
	return inventory.Reserve(ctx, tx, basketID, productIDs)
}

func (ledgerImpl) Release(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error {
	return inventory.Release(ctx, tx, basketID, productIDs)
}

func (ledgerImpl) ReleaseOwned(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) (int64, error) {
	return inventory.ReleaseOwned(ctx, tx, basketID)
}

func (ledgerImpl) Deliver(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error {
	return inventory.Deliver(ctx, tx, basketID, productIDs)
}

// Service exposes the basket fulfillment lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BasketDTO, error)
	Deliver(ctx context.Context, basketID uuid.UUID, staffID uuid.UUID) (*BasketDTO, error)
	Cancel(ctx context.Context, basketID uuid.UUID, staffID uuid.UUID) (*BasketDTO, error)
	Reschedule(ctx context.Context, input RescheduleInput) (*BasketDTO, error)
	MarkNotCollected(ctx context.Context, basketID uuid.UUID, staffID uuid.UUID) (*BasketDTO, error)
	SetPreparation(ctx context.Context, basketID uuid.UUID, target enums.BasketStatus, staffID uuid.UUID) (*BasketDTO, error)
	EditProducts(ctx context.Context, input EditProductsInput) (*BasketDTO, error)
	Get(ctx context.Context, basketID uuid.UUID) (*BasketDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*BasketListResult, error)
}

// CreateInput carries everything needed to open a basket.
type CreateInput struct {
	ApoiadoID   uuid.UUID
	StaffID     *uuid.UUID
	ProductIDs  []uuid.UUID
	ScheduledAt time.Time
	Origin      enums.BasketOrigin
	RequestID   *uuid.UUID
	Recurring   bool
	Notes       *string
}

// RescheduleInput moves the pickup date, optionally recording a missed pickup.
type RescheduleInput struct {
	BasketID      uuid.UUID
	NewDate       time.Time
	CountsAsFault bool
	StaffID       uuid.UUID
}

// EditProductsInput replaces the basket's product list.
type EditProductsInput struct {
	BasketID   uuid.UUID
	ProductIDs []uuid.UUID
	StaffID    uuid.UUID
}

// BasketEvent is the payload shared by lifecycle outbox events.
type BasketEvent struct {
	BasketID      uuid.UUID   `json:"basket_id"`
	ApoiadoID     uuid.UUID   `json:"apoiado_id"`
	Status        string      `json:"status"`
	EffectiveDate time.Time   `json:"effective_date"`
	FaultCount    int         `json:"fault_count"`
	ProductIDs    []uuid.UUID `json:"product_ids,omitempty"`
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	ledger     InventoryLedger
	apoiados   apoiadoLoader
	maxHorizon time.Duration
	now        func() time.Time
}

// NewService builds the basket lifecycle service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, ledger InventoryLedger, apoiados apoiadoLoader, maxHorizon time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if apoiados == nil {
		return nil, fmt.Errorf("apoiado loader required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     ob,
		ledger:     ledger,
		apoiados:   apoiados,
		maxHorizon: maxHorizon,
		now:        time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BasketDTO, error) {
	if input.ApoiadoID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "apoiado id required")
	}
	if len(input.ProductIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket needs at least one product")
	}
	if !input.Origin.IsValid() {
		input.Origin = enums.BasketOriginManual
	}
	if input.Origin == enums.BasketOriginAssistanceRequest && input.RequestID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assistance request reference required")
	}
	if input.Origin == enums.BasketOriginManual && input.RequestID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request reference only valid for assistance baskets")
	}
	if input.Recurring && input.Origin == enums.BasketOriginAssistanceRequest {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assistance baskets cannot recur")
	}

	now := s.now()
	scheduledAt := input.ScheduledAt
	if scheduledAt.IsZero() {
		scheduledAt = now
	}
	if s.maxHorizon > 0 && scheduledAt.After(now.Add(s.maxHorizon)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled date is beyond the allowed horizon")
	}

	apoiado, err := s.apoiados.FindByID(ctx, input.ApoiadoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "apoiado not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load apoiado")
	}
	if apoiado.Status != enums.ApoiadoStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("apoiado is %s and cannot receive baskets", apoiado.Status))
	}

	basket := &models.Basket{
		ID:             uuid.New(),
		ApoiadoID:      input.ApoiadoID,
		StaffID:        input.StaffID,
		Status:         enums.BasketStatusScheduled,
		ScheduledAt:    scheduledAt,
		Origin:         input.Origin,
		RequestID:      input.RequestID,
		Recurring:      input.Recurring,
		RecurrenceDays: models.DefaultRecurrenceDays,
		Notes:          input.Notes,
	}
	basket.Items = buildItems(basket.ID, input.ProductIDs)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if input.RequestID != nil {
			request, err := repo.FindAssistanceRequest(ctx, *input.RequestID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "assistance request not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assistance request")
			}
			if request.ApoiadoID != input.ApoiadoID {
				return pkgerrors.New(pkgerrors.CodeValidation, "assistance request belongs to another apoiado")
			}
			if request.Status != enums.AssistanceRequestStatusOpen {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("assistance request is %s", request.Status))
			}
			if err := repo.UpdateAssistanceRequestStatus(ctx, request.ID, enums.AssistanceRequestStatusLinked); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link assistance request")
			}
		}

		if err := repo.Create(ctx, basket); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket")
		}
		if err := s.ledger.Reserve(ctx, tx, basket.ID, input.ProductIDs); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, s.event(enums.EventBasketCreated, basket, input.ProductIDs, input.StaffID))
	})
	if err != nil {
		return nil, err
	}
	return NewBasketDTO(basket), nil
}

func (s *service) Deliver(ctx context.Context, basketID uuid.UUID, staffID uuid.UUID) (*BasketDTO, error) {
	var delivered *models.Basket
	err := s.runTransition(ctx, basketID, func(tx *gorm.DB, repo Repository, basket *models.Basket) error {
		productIDs := itemProductIDs(basket.Items)
		if err := s.ledger.Deliver(ctx, tx, basket.ID, productIDs); err != nil {
			return err
		}

		now := s.now()
		prev := basket.Status
		basket.Status = enums.BasketStatusDelivered
		basket.DeliveredAt = &now
		if err := updateBasket(ctx, repo, basket, prev); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, s.event(enums.EventBasketDelivered, basket, productIDs, &staffID)); err != nil {
			return err
		}
		if basket.Recurring {
			event := outbox.DomainEvent{
				EventType:     enums.EventBasketSuccessorRequested,
				AggregateType: enums.AggregateBasket,
				AggregateID:   basket.ID,
				Version:       1,
				Actor:         buildActor(&staffID),
				Data:          newSuccessorEvent(basket, now),
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		delivered = basket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewBasketDTO(delivered), nil
}

func (s *service) Cancel(ctx context.Context, basketID uuid.UUID, staffID uuid.UUID) (*BasketDTO, error) {
	var cancelled *models.Basket
	err := s.runTransition(ctx, basketID, func(tx *gorm.DB, repo Repository, basket *models.Basket) error {
		if _, err := s.ledger.ReleaseOwned(ctx, tx, basket.ID); err != nil {
			return err
		}

		now := s.now()
		prev := basket.Status
		basket.Status = enums.BasketStatusCancelled
		basket.CanceledAt = &now
		if err := updateBasket(ctx, repo, basket, prev); err != nil {
			return err
		}
		cancelled = basket
		return s.outbox.Emit(ctx, tx, s.event(enums.EventBasketCancelled, basket, nil, &staffID))
	})
	if err != nil {
		return nil, err
	}
	return NewBasketDTO(cancelled), nil
}

func (s *service) Reschedule(ctx context.Context, input RescheduleInput) (*BasketDTO, error) {
	if input.NewDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new date required")
	}
	now := s.now()
	if s.maxHorizon > 0 && input.NewDate.After(now.Add(s.maxHorizon)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new date is beyond the allowed horizon")
	}

	var rescheduled *models.Basket
	err := s.runTransition(ctx, input.BasketID, func(tx *gorm.DB, repo Repository, basket *models.Basket) error {
		outcome, err := DecideReschedule(basket, now, input.CountsAsFault)
		if err != nil {
			return err
		}

		if outcome == OutcomeFault {
			RecordFault(basket, now)
			if err := s.outbox.Emit(ctx, tx, s.event(enums.EventBasketFaultRecorded, basket, nil, &input.StaffID)); err != nil {
				return err
			}
		}

		newDate := input.NewDate
		basket.RescheduledAt = &newDate
		if err := updateBasket(ctx, repo, basket, basket.Status); err != nil {
			return err
		}
		rescheduled = basket
		return s.outbox.Emit(ctx, tx, s.event(enums.EventBasketRescheduled, basket, nil, &input.StaffID))
	})
	if err != nil {
		return nil, err
	}
	return NewBasketDTO(rescheduled), nil
}

func (s *service) MarkNotCollected(ctx context.Context, basketID uuid.UUID, staffID uuid.UUID) (*BasketDTO, error) {
	var closed *models.Basket
	err := s.runTransition(ctx, basketID, func(tx *gorm.DB, repo Repository, basket *models.Basket) error {
		now := s.now()
		if err := DecideNotCollected(basket, now); err != nil {
			return err
		}

		if _, err := s.ledger.ReleaseOwned(ctx, tx, basket.ID); err != nil {
			return err
		}

		RecordFault(basket, now)
		prev := basket.Status
		basket.Status = enums.BasketStatusNotCollected
		if err := updateBasket(ctx, repo, basket, prev); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, s.event(enums.EventBasketFaultRecorded, basket, nil, &staffID)); err != nil {
			return err
		}
		closed = basket
		return s.outbox.Emit(ctx, tx, s.event(enums.EventBasketNotCollected, basket, nil, &staffID))
	})
	if err != nil {
		return nil, err
	}
	return NewBasketDTO(closed), nil
}

func (s *service) SetPreparation(ctx context.Context, basketID uuid.UUID, target enums.BasketStatus, staffID uuid.UUID) (*BasketDTO, error) {
	if !target.IsActive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s is not a preparation state", target))
	}

	var updated *models.Basket
	err := s.runTransition(ctx, basketID, func(tx *gorm.DB, repo Repository, basket *models.Basket) error {
		if basket.Status == target {
			updated = basket
			return nil
		}
		prev := basket.Status
		basket.Status = target
		if err := updateBasket(ctx, repo, basket, prev); err != nil {
			return err
		}
		updated = basket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewBasketDTO(updated), nil
}

func (s *service) EditProducts(ctx context.Context, input EditProductsInput) (*BasketDTO, error) {
	if len(input.ProductIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket needs at least one product")
	}
	if dup := firstDuplicate(input.ProductIDs); dup != uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s listed twice", dup))
	}

	var edited *models.Basket
	err := s.runTransition(ctx, input.BasketID, func(tx *gorm.DB, repo Repository, basket *models.Basket) error {
		current := itemProductIDs(basket.Items)
		added, removed := diffProducts(current, input.ProductIDs)
		if len(added) == 0 && len(removed) == 0 {
			edited = basket
			return nil
		}

		if len(added) > 0 {
			if err := s.ledger.Reserve(ctx, tx, basket.ID, added); err != nil {
				return err
			}
		}
		if len(removed) > 0 {
			if err := s.ledger.Release(ctx, tx, basket.ID, removed); err != nil {
				return err
			}
		}

		items := buildItems(basket.ID, input.ProductIDs)
		if err := repo.ReplaceItems(ctx, basket.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace basket items")
		}
		basket.Items = items
		edited = basket
		return s.outbox.Emit(ctx, tx, s.event(enums.EventBasketProductsEdited, basket, input.ProductIDs, &input.StaffID))
	})
	if err != nil {
		return nil, err
	}
	return NewBasketDTO(edited), nil
}

func (s *service) Get(ctx context.Context, basketID uuid.UUID) (*BasketDTO, error) {
	basket, err := s.repo.FindByID(ctx, basketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	return NewBasketDTO(basket), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*BasketListResult, error) {
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list baskets")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &BasketListResult{Baskets: make([]BasketDTO, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for i := range rows {
		result.Baskets = append(result.Baskets, *NewBasketDTO(&rows[i]))
	}
	return result, nil
}

// runTransition loads the basket inside a transaction, rejects terminal
// states, and hands the row to the transition body.
func (s *service) runTransition(ctx context.Context, basketID uuid.UUID, fn func(tx *gorm.DB, repo Repository, basket *models.Basket) error) error {
	if basketID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "basket id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindByID(ctx, basketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if basket.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("basket is %s and cannot change", basket.Status))
		}
		return fn(tx, repo, basket)
	})
}

// updateBasket writes a transition through the status-guarded repository
// update. A guard miss means another transition won the race.
func updateBasket(ctx context.Context, repo Repository, basket *models.Basket, expected enums.BasketStatus) error {
	if err := repo.Update(ctx, basket, expected); err != nil {
		if errors.Is(err, ErrStaleBasket) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "basket was modified concurrently, reload and retry")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket")
	}
	return nil
}

func (s *service) event(eventType enums.OutboxEventType, basket *models.Basket, productIDs []uuid.UUID, staffID *uuid.UUID) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateBasket,
		AggregateID:   basket.ID,
		Version:       1,
		Actor:         buildActor(staffID),
		Data: BasketEvent{
			BasketID:      basket.ID,
			ApoiadoID:     basket.ApoiadoID,
			Status:        string(basket.Status),
			EffectiveDate: basket.EffectiveDate(),
			FaultCount:    basket.FaultCount,
			ProductIDs:    productIDs,
		},
	}
}

func buildActor(staffID *uuid.UUID) *outbox.ActorRef {
	if staffID == nil || *staffID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{StaffID: *staffID, Role: "staff"}
}

func buildItems(basketID uuid.UUID, productIDs []uuid.UUID) []models.BasketItem {
	items := make([]models.BasketItem, 0, len(productIDs))
	for i, productID := range productIDs {
		items = append(items, models.BasketItem{
			ID:        uuid.New(),
			BasketID:  basketID,
			ProductID: productID,
			Position:  i,
		})
	}
	return items
}

func itemProductIDs(items []models.BasketItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func firstDuplicate(ids []uuid.UUID) uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return id
		}
		seen[id] = struct{}{}
	}
	return uuid.Nil
}

func diffProducts(current, target []uuid.UUID) (added, removed []uuid.UUID) {
	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	targetSet := make(map[uuid.UUID]struct{}, len(target))
	for _, id := range target {
		targetSet[id] = struct{}{}
	}
	for _, id := range target {
		if _, ok := currentSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := targetSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
