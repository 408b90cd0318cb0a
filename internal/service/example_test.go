package service_test

import (
	"context"
	"fmt"

	"github.com/tempizhere/surl/internal/repository"
	"github.com/tempizhere/surl/internal/service"
	"github.com/tempizhere/surl/internal/slug"
	"go.uber.org/zap"
)

// ExampleService_CreateLink демонстрирует создание ссылки с выбранным слагом
func ExampleService_CreateLink() {
	repo := repository.NewMemoryRepository()
	svc := service.NewService(repo, slug.Derive("{5,10}"), slug.NewReservedSet([]string{"admin"}),
		nil, "http://localhost:8080", 8, zap.NewNop())

	link, err := svc.CreateLink(context.Background(), "https://example.com", "", "hello")
	if err != nil {
		fmt.Printf("Ошибка создания: %v\n", err)
		return
	}
	fmt.Println(svc.ShortURL(link.Slug))

	_, err = svc.CreateLink(context.Background(), "https://example.org", "", "hello")
	fmt.Println(err)

	_, err = svc.CreateLink(context.Background(), "https://example.org", "", "admin")
	fmt.Println(err)

	// Output:
	// http://localhost:8080/hello
	// slug already taken
	// slug is invalid or reserved
}
