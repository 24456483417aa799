package router

import (
	"github.com/gin-gonic/gin"

	"inkwell-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	novelHandler *handler.NovelHandler,
	chapterHandler *handler.ChapterHandler,
	versionHandler *handler.VersionHandler,
) {
	// 小说管理
	novels := v1.Group("/novels")
	{
		novels.GET("", novelHandler.ListNovels)
		novels.POST("", novelHandler.CreateNovel)
		novels.GET("/:nid", novelHandler.GetNovel)
		novels.PUT("/:nid", novelHandler.UpdateNovel)
		novels.DELETE("/:nid", novelHandler.DeleteNovel)

		// 小说下的章节树
		novels.GET("/:nid/chapters", chapterHandler.ListChapters)
		novels.POST("/:nid/chapters", chapterHandler.CreateChapter)
	}

	// 章节管理
	chapters := v1.Group("/chapters")
	{
		chapters.GET("/:cid", chapterHandler.GetChapter)
		chapters.PUT("/:cid", chapterHandler.RenameChapter)
		chapters.DELETE("/:cid", chapterHandler.DeleteChapter)
		chapters.PUT("/:cid/content", chapterHandler.UpdateContent)
		chapters.POST("/:cid/move", chapterHandler.MoveChapter)
		chapters.POST("/:cid/archive", chapterHandler.ArchiveChapter)

		// 章节的版本链
		chapters.GET("/:cid/versions", versionHandler.ListVersions)
		chapters.POST("/:cid/versions", versionHandler.CreateVersion)
		chapters.POST("/:cid/versions/prune", versionHandler.PruneVersions)
	}

	// 版本管理
	versions := v1.Group("/versions")
	{
		versions.GET("/compare", versionHandler.CompareVersions)
		versions.GET("/:vid", versionHandler.GetVersion)
		versions.GET("/:vid/content", versionHandler.GetVersionContent)
		versions.POST("/:vid/restore", versionHandler.RestoreVersion)
	}
}
