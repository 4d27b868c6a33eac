// Package mocks provides gomock implementations of the storefront repository and storage ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	users := mocks.NewMockUserRepository(ctrl)
//	users.EXPECT().GetByEmail(gomock.Any(), "admin@jersey.com").Return(user, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/jerseyretro/storefront/internal/core CacheRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/jerseyretro/storefront/internal/core UserRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=category_repository_mock.go github.com/jerseyretro/storefront/internal/core CategoryRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=product_repository_mock.go github.com/jerseyretro/storefront/internal/core ProductRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=product_image_repository_mock.go github.com/jerseyretro/storefront/internal/core ProductImageRepository

// Storage and provider-admin ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=object_store_mock.go github.com/jerseyretro/storefront/internal/ports ObjectStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=account_admin_mock.go github.com/jerseyretro/storefront/internal/ports AccountAdmin
