package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"inkwell-api/internal/config"
	"inkwell-api/internal/domain/entity"
	"inkwell-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	pg, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pg.Close()

	// 3. 建表
	fmt.Println("Running migrations...")
	if err := pg.DB().AutoMigrate(
		&entity.Novel{},
		&entity.Chapter{},
		&entity.ChapterVersion{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 创建示例小说（可选，便于本地联调）
	if os.Getenv("BOOTSTRAP_SEED") == "true" {
		novelRepo := postgres.NewNovelRepository(pg)
		seedTitle := "Untitled Novel"

		novel := entity.NewNovel(seedTitle, "", "")
		if err := novelRepo.Create(ctx, novel); err != nil {
			log.Fatalf("failed to seed novel: %v", err)
		}
		fmt.Printf("Seed novel created with ID: %d\n", novel.ID)

		chapterRepo := postgres.NewChapterRepository(pg)
		chapter := entity.NewChapter(novel.ID, "Chapter 1", nil, 0)
		if err := chapterRepo.Create(ctx, chapter); err != nil {
			log.Fatalf("failed to seed chapter: %v", err)
		}
		fmt.Printf("Seed chapter created with ID: %d\n", chapter.ID)
	}

	fmt.Println("Bootstrap completed successfully.")
}
