package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
)

func createTestProductService() (ProductService, *mockProductRepository) {
	repo := newMockProductRepository()
	return NewProductService(repo, zap.NewNop()), repo
}

func TestProductService_CreateProduct(t *testing.T) {
	service, _ := createTestProductService()

	promo := 7.50
	product, err := service.CreateProduct(&domain.CreateProductRequest{
		Name:             "Orégano Premium",
		Description:      "Orégano selecionado",
		Price:            8.90,
		PromotionalPrice: &promo,
		Stock:            50,
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if product.ID == 0 {
		t.Error("Expected product ID to be assigned")
	}
	if product.Status != domain.ProductStatusActive {
		t.Errorf("Expected active status, got %s", product.Status)
	}
	if product.Type != domain.ProductTypeSimple {
		t.Errorf("Expected simple type by default, got %s", product.Type)
	}
	if product.EffectivePrice() != 7.50 {
		t.Errorf("Expected effective price 7.50, got %v", product.EffectivePrice())
	}
}

func TestProductService_CreateProduct_InvalidPrice(t *testing.T) {
	service, _ := createTestProductService()

	_, err := service.CreateProduct(&domain.CreateProductRequest{Name: "x", Price: 0})
	if !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("Expected ErrInvalidPrice, got %v", err)
	}
}

func TestProductService_UpdateProduct_ClearPromotion(t *testing.T) {
	service, _ := createTestProductService()

	promo := 7.50
	product, err := service.CreateProduct(&domain.CreateProductRequest{
		Name: "Orégano", Price: 8.90, PromotionalPrice: &promo,
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	updated, err := service.UpdateProduct(product.ID, &domain.UpdateProductRequest{ClearPromotion: true})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated.PromotionalPrice != nil {
		t.Error("Expected promotion to be cleared")
	}
	if updated.EffectivePrice() != 8.90 {
		t.Errorf("Expected effective price back to 8.90, got %v", updated.EffectivePrice())
	}
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	service, _ := createTestProductService()

	_, err := service.UpdateProduct(999, &domain.UpdateProductRequest{})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_GetProduct(t *testing.T) {
	service, _ := createTestProductService()

	product, err := service.CreateProduct(&domain.CreateProductRequest{Name: "Cúrcuma", Price: 15.75})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	got, err := service.GetProduct(product.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got.Name != "Cúrcuma" {
		t.Errorf("Expected Cúrcuma, got %s", got.Name)
	}

	_, err = service.GetProduct(999)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_DeleteProduct(t *testing.T) {
	service, repo := createTestProductService()

	product, err := service.CreateProduct(&domain.CreateProductRequest{Name: "Cúrcuma", Price: 15.75})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if err := service.DeleteProduct(product.ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if repo.products[product.ID].Status != domain.ProductStatusDeleted {
		t.Error("Expected soft delete to set deleted status")
	}
}

func TestProductService_ListProducts_Defaults(t *testing.T) {
	service, _ := createTestProductService()

	service.CreateProduct(&domain.CreateProductRequest{Name: "a", Price: 1})
	service.CreateProduct(&domain.CreateProductRequest{Name: "b", Price: 2})

	resp, err := service.ListProducts(&domain.ProductListRequest{})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Errorf("Expected default page 1/size 20, got %d/%d", resp.Page, resp.PageSize)
	}
	if resp.Total != 2 {
		t.Errorf("Expected total 2, got %d", resp.Total)
	}
}
