package catalog

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Options regroupe les réglages injectables de la couche catalogue.
// Les valeurs par défaut reproduisent le comportement de production ; les
// tests injectent des TTL courts et un rand seedé.
type Options struct {
	FreshTTL   time.Duration // servi directement
	StaleTTL   time.Duration // servi + revalidation en arrière-plan
	MaxEntries int           // borne du cache, éviction la plus ancienne d'abord

	RelatedTarget int // quota visé par les étapes de repli
	RelatedMax    int // taille max de la liste retournée

	MaxPageSize int

	FetchTimeout time.Duration
	Retries      int
	RetryBackoff time.Duration

	Rand *rand.Rand // source de la troncature aléatoire, injectable en test
}

func DefaultOptions() Options {
	return Options{
		FreshTTL:      60 * time.Second,
		StaleTTL:      5 * time.Minute,
		MaxEntries:    30,
		RelatedTarget: 15,
		RelatedMax:    15,
		MaxPageSize:   50,
		FetchTimeout:  10 * time.Second,
		Retries:       3,
		RetryBackoff:  200 * time.Millisecond,
	}
}

// Service est la façade de récupération produits : planner de repli,
// filtrage/tri côté client et cache mémoire avec dé-duplication.
type Service struct {
	store Store
	cache *MemCache
	opts  Options

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(store Store, opts Options) *Service {
	if opts.FreshTTL <= 0 || opts.StaleTTL <= 0 || opts.MaxEntries <= 0 {
		def := DefaultOptions()
		if opts.FreshTTL <= 0 {
			opts.FreshTTL = def.FreshTTL
		}
		if opts.StaleTTL <= 0 {
			opts.StaleTTL = def.StaleTTL
		}
		if opts.MaxEntries <= 0 {
			opts.MaxEntries = def.MaxEntries
		}
	}
	if opts.RelatedTarget <= 0 {
		opts.RelatedTarget = DefaultOptions().RelatedTarget
	}
	if opts.RelatedMax <= 0 {
		opts.RelatedMax = opts.RelatedTarget
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultOptions().MaxPageSize
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultOptions().FetchTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultOptions().Retries
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = DefaultOptions().RetryBackoff
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Service{
		store: store,
		cache: NewMemCache(opts.FreshTTL, opts.StaleTTL, opts.MaxEntries),
		opts:  opts,
		rng:   rng,
	}
}

// Default est l'instance du process, construite une fois au démarrage.
var Default *Service

func Init(store Store, opts Options) {
	Default = New(store, opts)
}

// InvalidateCategory retire du cache toutes les entrées de navigation portant
// sur cette catégorie (appelé après une écriture vendeur).
func (s *Service) InvalidateCategory(category string) {
	needle := "cat=" + strings.ToLower(DisplayForm(category))
	s.cache.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, "browse:") && strings.Contains(key, needle)
	})
}

func (s *Service) shuffle(n int, swap func(i, j int)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(n, swap)
}
