package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

// SupplierUseCase alta, edición, baja lógica y consulta de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

func (uc *SupplierUseCase) Create(ctx context.Context, ownerID *string, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre del proveedor obligatorio", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	s := &entity.Supplier{
		ID:            uuid.New().String(),
		Name:          name,
		ContactPerson: in.ContactPerson,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:         in.Phone,
		Address:       in.Address,
		Active:        true,
		OwnerID:       ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.ShopID != "" {
		shopID := in.ShopID
		s.ShopID = &shopID
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	out := dto.NewSupplierResponse(s)
	return &out, nil
}

// Update edita los campos presentes en in. ownerID no nil restringe a proveedores de ese dueño.
func (uc *SupplierUseCase) Update(ctx context.Context, ownerID *string, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nombre del proveedor obligatorio", domain.ErrInvalidInput)
		}
		s.Name = name
	}
	if in.ContactPerson != nil {
		s.ContactPerson = *in.ContactPerson
	}
	if in.Email != nil {
		s.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		s.Phone = *in.Phone
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.ShopID != nil {
		if *in.ShopID == "" {
			s.ShopID = nil
		} else {
			shopID := *in.ShopID
			s.ShopID = &shopID
		}
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
	s.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	out := dto.NewSupplierResponse(s)
	return &out, nil
}

// Deactivate baja lógica: el proveedor deja de listarse y no admite órdenes nuevas;
// las órdenes existentes lo conservan.
func (uc *SupplierUseCase) Deactivate(ctx context.Context, ownerID *string, id string) error {
	s, err := uc.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !s.Active {
		return nil
	}
	s.Active = false
	s.UpdatedAt = time.Now().UTC()
	return uc.repo.Update(ctx, s)
}

func (uc *SupplierUseCase) owned(ctx context.Context, ownerID *string, id string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || (ownerID != nil && (s.OwnerID == nil || *s.OwnerID != *ownerID)) {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	return s, nil
}

func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
	}
	out := dto.NewSupplierResponse(s)
	return &out, nil
}

// List ownerID nil = todos los proveedores.
func (uc *SupplierUseCase) List(ctx context.Context, ownerID *string, page dto.PageRequest) (*dto.SupplierListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByOwner(ctx, ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.NewSupplierResponse(s))
	}
	return &dto.SupplierListResponse{
		Items: items,
		Page:  page.Response(len(items)),
	}, nil
}
