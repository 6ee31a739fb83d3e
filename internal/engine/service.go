package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"narrative-server/internal/catalog"
	"narrative-server/internal/domain"
	"narrative-server/internal/infrastructure/storage"
	"narrative-server/internal/network"
	"narrative-server/internal/systems"
	"narrative-server/pkg/api"
	"narrative-server/pkg/logger"
	"narrative-server/pkg/worldgen"
)

// Service owns the campaign: the world, the scheduler, the storyteller and
// the spectator hub. All simulation state is mutated from the single loop
// goroutine; everything pushed outward is a snapshot.
type Service struct {
	Config    Config
	World     *domain.World
	Gates     *domain.GateRegistry
	Scheduler *Scheduler
	OrderBook *TurnOrderBook
	Teller    *StoryTeller
	Diary     *Diary
	Hub       *network.Broadcaster

	store *storage.CampaignStore
	rng   *rand.Rand

	// latest is the frame most recently published by the loop goroutine.
	// HTTP pollers read it instead of the live world, which only the loop
	// may touch.
	snapMu sync.RWMutex
	latest api.ServerResponse

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewService(cfg Config) (*Service, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	actions := catalog.DefaultActionCatalog()
	if cfg.ActionCatalog != "" {
		loaded, err := catalog.LoadActionCatalog(cfg.ActionCatalog)
		if err != nil {
			return nil, err
		}
		actions = loaded
	}
	goals := catalog.DefaultGoalCatalog()
	if cfg.GoalCatalog != "" {
		loaded, err := catalog.LoadGoalCatalog(cfg.GoalCatalog)
		if err != nil {
			return nil, err
		}
		goals = loaded
	}

	world, gates := buildWorld(cfg.World, rng)

	diary := NewDiary()
	s := &Service{
		Config:    cfg,
		World:     world,
		Gates:     gates,
		Scheduler: NewScheduler(),
		OrderBook: NewTurnOrderBook(rng),
		Diary:     diary,
		Hub:       network.NewBroadcaster(),
		rng:       rng,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
	s.Teller = NewStoryTeller(world, gates, systems.NewSelector(goals),
		systems.NewResolver(rng), actions, diary, rng)

	if cfg.DBPath != "" {
		store, err := storage.OpenCampaignStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	// Pollers may arrive before the first turn; give them the starting state.
	s.latest = s.buildSnapshot()

	logger.Log.WithFields(logrus.Fields{
		"seed":   cfg.Seed,
		"actors": len(world.Units()),
	}).Info("Campaign initialized")
	return s, nil
}

// buildWorld lays out a meadow and a cave joined by a bidirectional gate,
// then spawns the starting cast: heroes on the west side, beasts on the
// east, so the first rounds are about closing the distance.
func buildWorld(cfg WorldConfig, rng *rand.Rand) (*domain.World, *domain.GateRegistry) {
	world := domain.NewWorld()

	meadow := worldgen.GenerateMeadow("meadow", "The Meadow", cfg.Width, cfg.Height, rng)
	cave := worldgen.GenerateCave("cave", "The Deep Cave", cfg.Width, cfg.Height, cfg.Rooms, rng)
	world.AddMap(meadow)
	world.AddMap(cave.Map)

	gates := domain.NewGateRegistry()
	gates.AddGate(domain.Gate{
		Name:          "cave_mouth",
		MapFrom:       "meadow",
		PositionFrom:  domain.Position{X: cfg.Width - 2, Y: cfg.Height / 2},
		MapTo:         "cave",
		PositionTo:    cave.Start,
		Bidirectional: true,
	})

	heroAnchor := domain.Position{X: 2, Y: cfg.Height / 2}
	for i := 0; i < cfg.Heroes; i++ {
		hero := worldgen.NewHero("", rng)
		world.AddUnit(hero)
		worldgen.PlaceUnit(world, meadow, hero, heroAnchor)
	}

	beastAnchor := domain.Position{X: cfg.Width - 4, Y: cfg.Height / 2}
	for i := 0; i < cfg.Beasts; i++ {
		beast := worldgen.NewBeast(rng)
		world.AddUnit(beast)
		worldgen.PlaceUnit(world, meadow, beast, beastAnchor)
	}

	return world, gates
}

func (s *Service) Start() {
	go s.Run()
}

// Run drives the campaign until stopped or the round budget is spent. An
// in-flight turn always finishes before teardown.
func (s *Service) Run() {
	defer close(s.doneChan)
	logger.Log.Info("Campaign loop started")

	for {
		select {
		case <-s.stopChan:
			s.shutdown("stopped")
			return
		default:
		}

		if !s.Scheduler.RoundInProgress() {
			if s.Config.MaxRounds > 0 && s.Scheduler.CurrentRound() >= s.Config.MaxRounds {
				s.shutdown("round budget spent")
				return
			}

			order := s.OrderBook.Sync(s.World.Units())
			if len(order) == 0 {
				logger.Log.Warn("No living actors remain, campaign over.")
				s.shutdown("all actors dead")
				return
			}
			s.Scheduler.StartNewRound(order, 0)
		}

		actorID := s.Scheduler.CurrentActorID()
		actor, ok := s.World.Unit(actorID)
		if !ok || !actor.IsAlive() {
			logger.Log.WithField("unit_id", actorID).Info("Actor unavailable, turn skipped.")
			s.Scheduler.EndTurn()
			continue
		}

		s.Teller.TakeTurn(actor, s.Scheduler.CurrentRound(), s.Scheduler.GlobalTurn()+1)
		s.Scheduler.EndTurn()

		s.Hub.Broadcast(s.publishSnapshot())

		if d := s.Config.TurnDelay(); d > 0 {
			select {
			case <-s.stopChan:
				s.shutdown("stopped")
				return
			case <-time.After(d):
			}
		}
	}
}

// Stop requests teardown and blocks until the loop has fully exited.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.doneChan
}

// Done is closed when the loop exits, whether stopped or finished.
func (s *Service) Done() <-chan struct{} {
	return s.doneChan
}

func (s *Service) shutdown(reason string) {
	logger.Log.WithField("reason", reason).Info("Campaign loop stopping")

	s.publishSnapshot()
	s.persist()
	s.Hub.Broadcast(api.ServerResponse{
		Type:  api.TypeShutdown,
		Round: s.Scheduler.CurrentRound(),
		Turn:  s.Scheduler.GlobalTurn(),
	})
}

// persist writes campaign state and chronicle. Only ever called from the
// loop goroutine during teardown, never concurrently with live mutation.
func (s *Service) persist() {
	if s.store != nil {
		if err := s.store.Save(s.campaignState()); err != nil {
			logger.Log.WithError(err).Error("Failed to save campaign")
		}
		if err := s.store.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close campaign store")
		}
	}

	if s.Config.ChroniclePath != "" {
		chronicle := storage.Chronicle{
			Seed:      s.Config.Seed,
			Rounds:    s.Scheduler.CurrentRound(),
			Timestamp: time.Now().Unix(),
			Entries:   s.diaryRecords(),
		}
		if err := storage.SaveChronicle(s.Config.ChroniclePath, chronicle); err != nil {
			logger.Log.WithError(err).Error("Failed to write chronicle")
		}
	}
}

func (s *Service) campaignState() storage.CampaignState {
	state := storage.CampaignState{
		Seed:       s.Config.Seed,
		Round:      s.Scheduler.CurrentRound(),
		GlobalTurn: s.Scheduler.GlobalTurn(),
		Diary:      s.diaryRecords(),
	}
	for _, u := range s.World.Units() {
		props, err := json.Marshal(u.Props)
		if err != nil {
			logger.Log.WithError(err).WithField("unit_id", u.ID).Warn("Unit properties not serializable, skipped.")
			continue
		}
		state.Units = append(state.Units, storage.UnitRecord{
			ID:    u.ID,
			Name:  u.Name,
			Kind:  u.Kind,
			Props: props,
		})
	}
	return state
}

func (s *Service) diaryRecords() []storage.DiaryRecord {
	entries := s.Diary.Entries()
	out := make([]storage.DiaryRecord, len(entries))
	for i, e := range entries {
		out[i] = storage.DiaryRecord{
			Round:     e.Round,
			Turn:      e.Turn,
			ActorID:   e.ActorID,
			ActorName: e.ActorName,
			GoalID:    e.GoalID,
			Action:    e.Action,
			Text:      e.Text,
			Timestamp: e.Timestamp,
		}
	}
	return out
}

// Snapshot returns the frame most recently published by the loop. It is the
// only view of the campaign that may be read from other goroutines; the
// frame is never mutated after publication.
func (s *Service) Snapshot() api.ServerResponse {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.latest
}

// publishSnapshot renders a fresh frame from live state and installs it as
// the latest. Loop goroutine only.
func (s *Service) publishSnapshot() api.ServerResponse {
	snap := s.buildSnapshot()
	s.snapMu.Lock()
	s.latest = snap
	s.snapMu.Unlock()
	return snap
}

// buildSnapshot renders the read-only view pushed to spectators. It reads
// live world and scheduler state, so only the loop goroutine may call it.
func (s *Service) buildSnapshot() api.ServerResponse {
	resp := api.ServerResponse{
		Type:         api.TypeSnapshot,
		Round:        s.Scheduler.CurrentRound(),
		Turn:         s.Scheduler.GlobalTurn(),
		CurrentActor: s.Scheduler.CurrentActorID(),
		TurnOrder:    s.Scheduler.TurnOrder(),
	}

	for _, m := range s.World.Maps() {
		resp.Maps = append(resp.Maps, api.MapView{
			ID: m.ID, Name: m.Name, Width: m.Width, Height: m.Height,
		})
	}

	for _, u := range s.World.Units() {
		view := api.UnitView{
			ID:        u.ID,
			Name:      u.Name,
			Kind:      u.Kind,
			Faction:   u.TextOr(domain.PropFaction, ""),
			Health:    u.NumberOr(domain.PropHealth, 0),
			MaxHealth: u.NumberOr(domain.PropMaxHealth, 0),
			Mana:      u.NumberOr(domain.PropMana, 0),
			MaxMana:   u.NumberOr(domain.PropMaxMana, 0),
			Alive:     u.IsAlive(),
		}
		if loc, err := u.Location(); err == nil {
			view.MapID = loc.MapID
			view.X = loc.Pos.X
			view.Y = loc.Pos.Y
		}
		resp.Units = append(resp.Units, view)
	}

	for _, e := range s.Diary.Tail(20) {
		resp.Diary = append(resp.Diary, api.DiaryView{
			Round:     e.Round,
			Turn:      e.Turn,
			ActorName: e.ActorName,
			Text:      e.Text,
		})
	}
	return resp
}

// String implements fmt.Stringer for debug logging.
func (s *Service) String() string {
	return fmt.Sprintf("campaign(round=%d turn=%d actors=%d)",
		s.Scheduler.CurrentRound(), s.Scheduler.GlobalTurn(), len(s.World.Units()))
}
