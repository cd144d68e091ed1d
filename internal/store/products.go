package store

import (
	"context"

	"shop-service/internal/models"
)

// CountProducts returns the number of catalog rows
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.get(ctx, &n, "SELECT COUNT(*) FROM products")
	return n, err
}

// CreateProduct inserts a product and fills in its ID
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.get(ctx, &product.ID,
		"INSERT INTO products (name, description, price) VALUES (?, ?, ?) RETURNING id",
		product.Name, product.Description, product.Price)
}

// GetProducts retrieves all products in insertion order
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.selectAll(ctx, &products, "SELECT id, name, description, price FROM products ORDER BY id")
	return products, err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := s.get(ctx, &product, "SELECT id, name, description, price FROM products WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &product, nil
}
