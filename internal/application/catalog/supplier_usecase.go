package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	repo        repository.SupplierRepository
	productRepo repository.ProductRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, productRepo repository.ProductRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, productRepo: productRepo}
}

// Create crea un proveedor, activo salvo que se indique lo contrario.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := time.Now()
	supplier := &entity.Supplier{
		ID:            uuid.New().String(),
		Name:          name,
		ContactPerson: in.ContactPerson,
		Email:         strings.TrimSpace(in.Email),
		Phone:         in.Phone,
		Address:       in.Address,
		City:          in.City,
		PostalCode:    in.PostalCode,
		Country:       in.Country,
		PaymentTerms:  in.PaymentTerms,
		Notes:         in.Notes,
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return dto.NewSupplierResponse(supplier), nil
}

// GetByID obtiene un proveedor.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSupplierResponse(s), nil
}

// List lista proveedores por nombre.
func (uc *SupplierUseCase) List(ctx context.Context, q dto.SupplierQuery) (*dto.SupplierListResponse, error) {
	q.DefaultPage()
	list, err := uc.repo.List(ctx, repository.SupplierFilter{
		ActiveOnly: q.ActiveOnly,
		Search:     strings.TrimSpace(q.Search),
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *dto.NewSupplierResponse(s))
	}
	return &dto.SupplierListResponse{Items: items, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset}}, nil
}

// Update actualización parcial.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "requerido")
		}
		s.Name = name
	}
	setString(&s.ContactPerson, in.ContactPerson)
	setString(&s.Email, in.Email)
	setString(&s.Phone, in.Phone)
	setString(&s.Address, in.Address)
	setString(&s.City, in.City)
	setString(&s.PostalCode, in.PostalCode)
	setString(&s.Country, in.Country)
	setString(&s.PaymentTerms, in.PaymentTerms)
	setString(&s.Notes, in.Notes)
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return dto.NewSupplierResponse(s), nil
}

// ToggleStatus activa o desactiva el proveedor.
func (uc *SupplierUseCase) ToggleStatus(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.IsActive = !s.IsActive
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return dto.NewSupplierResponse(s), nil
}

// Products productos asociados al proveedor.
func (uc *SupplierUseCase) Products(ctx context.Context, id string) ([]dto.ProductResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.productRepo.List(ctx, repository.ProductFilter{SupplierID: id})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *dto.NewProductResponse(p))
	}
	return out, nil
}

// Delete elimina un proveedor sin productos ni pedidos asociados.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	hasProducts, err := uc.repo.HasProducts(ctx, id)
	if err != nil {
		return err
	}
	if hasProducts {
		return fmt.Errorf("%w: el proveedor tiene productos asociados", domain.ErrConflict)
	}
	hasOrders, err := uc.repo.HasOrders(ctx, id)
	if err != nil {
		return err
	}
	if hasOrders {
		return fmt.Errorf("%w: el proveedor tiene pedidos asociados", domain.ErrConflict)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *SupplierUseCase) get(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewNotFoundError("proveedor", id)
	}
	return s, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
