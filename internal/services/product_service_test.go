package services_test

import (
	"context"
	"fmt"
	"testing"

	"biterush/internal/models"
	"biterush/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validProduct() *models.Product {
	return &models.Product{
		Name:        "Smash Burger",
		Description: "Double patty, cheddar",
		Price:       100,
		Category:    models.CategoryBurger,
		Image:       "/images/smash.jpg",
		Rating:      4.5,
		InStock:     true,
	}
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	minPrice := 10.0
	filter := models.ProductFilter{Category: models.CategoryPizza, MinPrice: &minPrice}
	expectedProducts := []models.Product{
		{ID: "1", Name: "Margherita", Price: 12.0, Category: models.CategoryPizza},
		{ID: "2", Name: "Pepperoni", Price: 14.0, Category: models.CategoryPizza},
	}

	mockRepo.On("GetAll", ctx, filter).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx, filter)

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetAllProducts_InvalidFilter(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	_, err := service.GetAllProducts(context.Background(), models.ProductFilter{Category: "sushi"})
	assert.ErrorIs(t, err, services.ErrValidation)

	lo, hi := 50.0, 10.0
	_, err = service.GetAllProducts(context.Background(), models.ProductFilter{MinPrice: &lo, MaxPrice: &hi})
	assert.ErrorIs(t, err, services.ErrValidation)

	mockRepo.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	expectedProduct := &models.Product{ID: "1", Name: "Margherita", Price: 12.0}

	// Test successful retrieval
	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	// Test product not found
	mockRepo.On("GetByID", ctx, "99").Return(nil, notFound("product 99")).Once()
	product, err = service.GetProductByID(ctx, "99")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	newProduct := validProduct()

	// Test successful creation
	mockRepo.On("Create", ctx, newProduct).Return(nil).Once()
	err := service.CreateProduct(ctx, newProduct)
	assert.NoError(t, err)

	// Test creation failure (e.g., database error)
	mockRepo.On("Create", ctx, newProduct).Return(fmt.Errorf("database error")).Once()
	err = service.CreateProduct(ctx, newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Invalid(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	bad := validProduct()
	bad.Price = -1
	bad.Category = "sushi"
	bad.Rating = 7

	err := service.CreateProduct(context.Background(), bad)

	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "category")
	assert.Contains(t, verr.Fields, "rating")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	updatedProduct := validProduct()
	updatedProduct.ID = "6f1c4a1e-3b9b-4a55-9d1f-2c9a5e7b8d10"

	// Test successful update
	mockRepo.On("Update", ctx, updatedProduct).Return(nil).Once()
	err := service.UpdateProduct(ctx, updatedProduct)
	assert.NoError(t, err)

	// Test update failure (product not found in repo)
	missing := validProduct()
	missing.ID = "0b7e2f9c-8d6a-4e1b-9c3f-5a2d7e8f1b42"
	mockRepo.On("Update", ctx, missing).Return(notFound("product")).Once()
	err = service.UpdateProduct(ctx, missing)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	ctx := context.Background()

	// Test successful deletion
	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	err := service.DeleteProduct(ctx, "1")
	assert.NoError(t, err)

	// Test deletion failure (product not found)
	mockRepo.On("Delete", ctx, "99").Return(notFound("product 99")).Once()
	err = service.DeleteProduct(ctx, "99")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}
