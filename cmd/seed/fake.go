package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

// supplierCreator y productCreator los cumplen los casos de uso de catálogo.
type supplierCreator interface {
	Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
}

type productCreator interface {
	Create(ctx context.Context, actor string, in dto.CreateProductRequest) (*dto.ProductResponse, error)
}

// seedFake crea un proveedor por cada cinco productos y n productos repartidos entre ellos.
func seedFake(ctx context.Context, suppliers supplierCreator, products productCreator, n int, seed uint64) (int, error) {
	f := gofakeit.New(seed)

	supplierIDs := make([]string, 0, n/5+1)
	for i := 0; i < n/5+1; i++ {
		s, err := suppliers.Create(ctx, dto.CreateSupplierRequest{
			Name:          f.Company(),
			ContactPerson: f.Name(),
			Email:         f.Email(),
			Phone:         f.Phone(),
			Address:       f.Street(),
			City:          f.City(),
			PostalCode:    f.Zip(),
			Country:       f.Country(),
			PaymentTerms:  fmt.Sprintf("%d días", f.RandomInt([]int{15, 30, 60})),
		})
		if err != nil {
			return 0, fmt.Errorf("proveedor %d: %w", i, err)
		}
		supplierIDs = append(supplierIDs, s.ID)
	}

	created := 0
	for i := 0; i < n; i++ {
		minLevel := f.IntRange(0, 20)
		supplierID := supplierIDs[i%len(supplierIDs)]
		_, err := products.Create(ctx, seedActor, dto.CreateProductRequest{
			Name:          f.ProductName(),
			Description:   f.ProductDescription(),
			Category:      f.ProductCategory(),
			Reference:     fmt.Sprintf("%s-%04d", strings.ToUpper(f.LetterN(3)), i+1),
			UnitPrice:     decimal.NewFromFloat(f.Price(1, 500)).Round(2),
			StockQuantity: f.IntRange(0, 200),
			MinStockLevel: &minLevel,
			SupplierID:    &supplierID,
		})
		if err != nil {
			return created, fmt.Errorf("producto %d: %w", i, err)
		}
		created++
	}
	return created, nil
}
