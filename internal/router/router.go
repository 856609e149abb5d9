package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"opensocial/internal/config"
	"opensocial/internal/handlers"
	"opensocial/internal/middleware"
	"opensocial/internal/ratelimit"
	"opensocial/internal/services"
)

// RegisterRoutes wires services and handlers onto the engine.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, limiter *ratelimit.Limiter, cfg *config.Config) {
	ledger := services.NewLedger()

	userService := services.NewUserService(db, limiter)
	postService := services.NewPostService(db, ledger, limiter)
	commentService := services.NewCommentService(db, ledger, limiter)
	voteService := services.NewVoteService(db, ledger, limiter)
	bookmarkService := services.NewBookmarkService(db, limiter)
	rankingService := services.NewRankingService(db)

	authHandler := handlers.NewAuthHandler(userService)
	postHandler := handlers.NewPostHandler(postService, commentService)
	commentHandler := handlers.NewCommentHandler(commentService)
	voteHandler := handlers.NewVoteHandler(voteService)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkService)
	userHandler := handlers.NewUserHandler(userService, postService, commentService)
	cronHandler := handlers.NewCronHandler(rankingService)

	r.Use(middleware.LoadUser(db))

	// Public routes
	r.GET("/", postHandler.ListTop)
	r.GET("/new", postHandler.ListNew)
	r.GET("/p/:pid", postHandler.Detail)
	r.GET("/p/:pid/history", postHandler.History)
	r.GET("/comment/:cid/history", commentHandler.History)
	r.GET("/u/:username", userHandler.Profile)
	r.GET("/u/:username/posts", userHandler.Posts)
	r.GET("/u/:username/comments", userHandler.Comments)

	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/register", authHandler.Register)

		authorized.GET("/me", userHandler.Me)
		authorized.PUT("/me", userHandler.UpdateMe)
		authorized.DELETE("/me", userHandler.DeleteMe)

		authorized.POST("/submit", postHandler.Create)
		authorized.PUT("/p/:pid", postHandler.Update)
		authorized.DELETE("/p/:pid", postHandler.Delete)

		authorized.POST("/p/:pid/comment", commentHandler.Create)
		authorized.PUT("/comment/:cid", commentHandler.Update)
		authorized.DELETE("/comment/:cid", commentHandler.Delete)

		authorized.POST("/vote/post/:pid", voteHandler.VotePost)
		authorized.DELETE("/vote/post/:pid", voteHandler.UnvotePost)
		authorized.POST("/vote/comment/:cid", voteHandler.VoteComment)
		authorized.DELETE("/vote/comment/:cid", voteHandler.UnvoteComment)

		authorized.POST("/bookmark/:pid", bookmarkHandler.Add)
		authorized.DELETE("/bookmark/:pid", bookmarkHandler.Remove)
		authorized.GET("/bookmarks", bookmarkHandler.List)
		authorized.GET("/voted", voteHandler.Voted)
	}

	// Internal maintenance routes
	internal := r.Group("/internal")
	internal.Use(middleware.CronAuth(cfg.CronSecret))
	{
		internal.POST("/recompute-scores", cronHandler.RecomputeScores)
	}
}
