package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	"github.com/lojasocial-app/lojasocial-backend/pkg/enums"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
)

// Reserve claims every listed product unit for the basket. Each unit is
// guarded by a conditional update on (status, basket_id), so two baskets
// racing for the same unit resolve to exactly one winner. Any failed claim
// returns an error and the caller's transaction rolls back the rest.
func Reserve(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory reserve")
	}
	if basketID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "basket id is required")
	}
	if len(productIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one product is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, productID := range productIDs {
		if productID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if _, dup := seen[productID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s listed twice", productID))
		}
		seen[productID] = struct{}{}
	}

	for _, productID := range productIDs {
		res := tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND status = ? AND basket_id IS NULL", productID, enums.ProductStatusAvailable).
			Updates(map[string]any{
				"status":    enums.ProductStatusReserved,
				"basket_id": basketID,
			})
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve product")
		}
		if res.RowsAffected == 0 {
			return reserveConflict(ctx, tx, productID)
		}
	}
	return nil
}

// Release returns reserved units to the available pool. Only the owning
// basket may release; a unit already back in the pool is skipped so retries
// stay idempotent.
func Release(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory release")
	}
	for _, productID := range productIDs {
		res := tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND status = ? AND basket_id = ?", productID, enums.ProductStatusReserved, basketID).
			Updates(map[string]any{
				"status":    enums.ProductStatusAvailable,
				"basket_id": nil,
			})
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release product")
		}
		if res.RowsAffected == 0 {
			if err := releaseMismatch(ctx, tx, basketID, productID); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReleaseOwned returns every reserved unit held by the basket to the pool in
// one statement. Delivered units are untouched, which keeps cancellation of a
// partially fulfilled basket idempotent.
func ReleaseOwned(ctx context.Context, tx *gorm.DB, basketID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory release")
	}
	res := tx.WithContext(ctx).Model(&models.Product{}).
		Where("basket_id = ? AND status = ?", basketID, enums.ProductStatusReserved).
		Updates(map[string]any{
			"status":    enums.ProductStatusAvailable,
			"basket_id": nil,
		})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release basket inventory")
	}
	return res.RowsAffected, nil
}

// Deliver marks reserved units as handed over. Units must be reserved by the
// delivering basket; anything else is a state conflict.
func Deliver(ctx context.Context, tx *gorm.DB, basketID uuid.UUID, productIDs []uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory deliver")
	}
	for _, productID := range productIDs {
		res := tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND status = ? AND basket_id = ?", productID, enums.ProductStatusReserved, basketID).
			Update("status", enums.ProductStatusDelivered)
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deliver product")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("product %s is not reserved by basket %s", productID, basketID))
		}
	}
	return nil
}

func reserveConflict(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	var product models.Product
	err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("product %s is %s and cannot be reserved", productID, product.Status))
}

func releaseMismatch(ctx context.Context, tx *gorm.DB, basketID, productID uuid.UUID) error {
	var product models.Product
	err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status == enums.ProductStatusAvailable && product.BasketID == nil {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("product %s is %s and not releasable by basket %s", productID, product.Status, basketID))
}
