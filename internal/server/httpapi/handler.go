package httpapi

import (
	"net/http"
	"path"

	"github.com/dmitrijs2005/recipehub/internal/logging"
	"github.com/gorilla/mux"
)

// Handler serves the JSON API on top of the services.
type Handler struct {
	users        UserService
	recipes      RecipeService
	search       SearchService
	categories   CategoryService
	ratings      RatingService
	comments     CommentService
	logger       logging.Logger
	maxImageSize int64
}

// RouterConfig collects what NewRouter wires together. Images, Metrics and
// AuthLimiter are optional.
type RouterConfig struct {
	Users      UserService
	Recipes    RecipeService
	Search     SearchService
	Categories CategoryService
	Ratings    RatingService
	Comments   CommentService
	Tokens     TokenValidator

	Images        http.Handler
	UploadsPrefix string
	MaxImageSize  int64

	Metrics     *Metrics
	AuthLimiter *RateLimiter
	Logger      logging.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger.With("module", "http")
	h := &Handler{
		users:        cfg.Users,
		recipes:      cfg.Recipes,
		search:       cfg.Search,
		categories:   cfg.Categories,
		ratings:      cfg.Ratings,
		comments:     cfg.Comments,
		logger:       logger,
		maxImageSize: cfg.MaxImageSize,
	}
	auth := requireAuth(cfg.Tokens)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(requestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	if cfg.Images != nil {
		prefix := path.Join("/", cfg.UploadsPrefix)
		r.PathPrefix(prefix+"/").
			Handler(http.StripPrefix(prefix, cfg.Images)).
			Methods(http.MethodGet, http.MethodHead)
	}

	api := r.PathPrefix("/api").Subrouter()

	authRoutes := api.PathPrefix("/auth").Subrouter()
	if cfg.AuthLimiter != nil {
		authRoutes.Use(cfg.AuthLimiter.Middleware)
	}
	authRoutes.HandleFunc("/register", h.register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", h.login).Methods(http.MethodPost)

	// Recipes. The search route must precede /recipes/{id}.
	api.HandleFunc("/recipes", h.listRecipes).Methods(http.MethodGet)
	api.HandleFunc("/recipes/search", h.searchRecipes).Methods(http.MethodGet)
	api.HandleFunc("/recipes/{id:[0-9]+}", h.getRecipe).Methods(http.MethodGet)
	api.Handle("/recipes", auth(http.HandlerFunc(h.createRecipe))).Methods(http.MethodPost)
	api.Handle("/recipes/{id:[0-9]+}", auth(http.HandlerFunc(h.updateRecipe))).Methods(http.MethodPut)
	api.Handle("/recipes/{id:[0-9]+}", auth(http.HandlerFunc(h.deleteRecipe))).Methods(http.MethodDelete)
	api.Handle("/recipes/{id:[0-9]+}/image", auth(http.HandlerFunc(h.uploadImage))).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}/recipes", h.listUserRecipes).Methods(http.MethodGet)

	api.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)
	api.Handle("/categories", auth(http.HandlerFunc(h.createCategory))).Methods(http.MethodPost)

	api.HandleFunc("/ratings/{recipeId:[0-9]+}", h.listRatings).Methods(http.MethodGet)
	api.Handle("/ratings", auth(http.HandlerFunc(h.rate))).Methods(http.MethodPost)

	api.HandleFunc("/comments/{recipeId:[0-9]+}", h.listComments).Methods(http.MethodGet)
	api.Handle("/comments", auth(http.HandlerFunc(h.createComment))).Methods(http.MethodPost)
	api.Handle("/comments/{id:[0-9]+}", auth(http.HandlerFunc(h.deleteComment))).Methods(http.MethodDelete)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// caller returns the authenticated user's id. Routes behind requireAuth
// always have one.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing token")
		return 0, false
	}
	return id.UserID, true
}
