package devapi

import (
	"sort"
	"sync"
	"time"

	"github.com/krancour/mentora/sdk/authx"
	"github.com/krancour/mentora/sdk/content"
	"github.com/krancour/mentora/sdk/meta"
	"github.com/krancour/mentora/sdk/tracks"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// timestampLayout is RFC 3339 with fixed-width nanoseconds so that
// timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	xpPerLevel = 500
	dailyGoal  = 3
	// Each completed task is credited with this much learning time.
	hoursPerTask = 0.25
)

type account struct {
	user         authx.User
	passwordHash []byte
}

type enrollment struct {
	progress    tracks.Progress
	preferences tracks.Preferences
	completions []tracks.CompletedTask
}

// Store is the development API server's in-memory datastore. It is safe for
// concurrent use.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]*account
	enrollments map[string]map[string]*enrollment
	// revoked maps the IDs of logged out tokens to their expiry
	revoked    map[string]time.Time
	bcryptCost int
	now        func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:    map[string]*account{},
		enrollments: map[string]map[string]*enrollment{},
		revoked:     map[string]time.Time{},
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
	}
}

func (s *Store) createUser(reg authx.Registration) (authx.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return authx.User{}, errors.Wrap(err, "error hashing password")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[reg.Username]; ok {
		return authx.User{}, &meta.ErrBadRequest{
			Reason: "Username already registered",
		}
	}
	for _, acct := range s.accounts {
		if acct.user.Email == reg.Email {
			return authx.User{}, &meta.ErrBadRequest{
				Reason: "Email already registered",
			}
		}
	}
	displayName := reg.DisplayName
	if displayName == "" {
		displayName = reg.Username
	}
	acct := &account{
		user: authx.User{
			Username:    reg.Username,
			DisplayName: displayName,
			Email:       reg.Email,
			AvatarIcon:  "rocket",
		},
		passwordHash: hash,
	}
	s.accounts[reg.Username] = acct
	return acct.user, nil
}

func (s *Store) authenticate(username, password string) (authx.User, error) {
	s.mu.RLock()
	acct, ok := s.accounts[username]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(
		acct.passwordHash,
		[]byte(password),
	) != nil {
		return authx.User{}, &meta.ErrAuthentication{
			Reason: "Incorrect username or password",
		}
	}
	return s.getUser(username)
}

func (s *Store) userExists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[username]
	return ok
}

func (s *Store) getUser(username string) (authx.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[username]
	if !ok {
		return authx.User{}, &meta.ErrNotFound{Reason: "User not found"}
	}
	user := acct.user
	stats := s.statsLocked(username)
	user.Stats = &stats
	return user, nil
}

func (s *Store) updateProfile(
	username string,
	update authx.ProfileUpdate,
) (authx.User, error) {
	s.mu.Lock()
	acct, ok := s.accounts[username]
	if !ok {
		s.mu.Unlock()
		return authx.User{}, &meta.ErrNotFound{Reason: "User not found"}
	}
	if update.DisplayName != "" {
		acct.user.DisplayName = update.DisplayName
	}
	if update.Email != "" {
		acct.user.Email = update.Email
	}
	if update.Bio != "" {
		acct.user.Bio = update.Bio
	}
	if update.AvatarIcon != "" {
		acct.user.AvatarIcon = update.AvatarIcon
	}
	s.mu.Unlock()
	return s.getUser(username)
}

func (s *Store) stats(username string) authx.UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked(username)
}

// statsLocked must be called with mu held.
func (s *Store) statsLocked(username string) authx.UserStats {
	stats := authx.UserStats{}
	days := map[string]struct{}{}
	var tasks int
	for _, e := range s.enrollments[username] {
		for _, c := range e.completions {
			stats.TotalXP += c.XPEarned
			tasks++
			if t, err := time.Parse(time.RFC3339, c.CompletedAt); err == nil {
				days[t.UTC().Format("2006-01-02")] = struct{}{}
			}
		}
		if e.progress.PercentComplete >= 100 {
			stats.CompletedCourses++
		}
	}
	stats.Level = stats.TotalXP/xpPerLevel + 1
	stats.TotalHours = float64(tasks) * hoursPerTask
	// Consecutive days with activity, counting back from today
	for day := s.now().UTC(); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[day.Format("2006-01-02")]; !ok {
			break
		}
		stats.StreakDays++
	}
	return stats
}

func (s *Store) dailyProgress(username string) authx.DailyProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	today := s.now().UTC().Format("2006-01-02")
	progress := authx.DailyProgress{}
	for _, e := range s.enrollments[username] {
		for _, c := range e.completions {
			if t, err := time.Parse(time.RFC3339, c.CompletedAt); err == nil &&
				t.UTC().Format("2006-01-02") == today {
				progress.TasksCompleted++
			}
		}
	}
	progress.Percentage = float64(progress.TasksCompleted) * 100 / dailyGoal
	if progress.Percentage > 100 {
		progress.Percentage = 100
	}
	return progress
}

func (s *Store) enroll(username string, req tracks.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[username][req.TrackSlug]; ok {
		return &meta.ErrBadRequest{Reason: "Already enrolled in this track"}
	}
	if s.enrollments[username] == nil {
		s.enrollments[username] = map[string]*enrollment{}
	}
	trackName := req.TrackName
	if trackName == "" {
		if entry, ok := tracks.LookupCatalog(req.TrackSlug); ok {
			trackName = entry.Title
		} else {
			trackName = req.TrackSlug
		}
	}
	s.enrollments[username][req.TrackSlug] = &enrollment{
		progress: tracks.Progress{
			TrackSlug:    req.TrackSlug,
			TrackName:    trackName,
			LastAccessed: s.timestamp(),
		},
		preferences: req.Preferences,
	}
	return nil
}

func (s *Store) listEnrolled(username string) []tracks.EnrolledTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enrolled := make([]tracks.EnrolledTrack, 0, len(s.enrollments[username]))
	for _, e := range s.enrollments[username] {
		enrolled = append(
			enrolled,
			tracks.EnrolledTrack{
				TrackSlug:       e.progress.TrackSlug,
				TrackName:       e.progress.TrackName,
				PercentComplete: e.progress.PercentComplete,
				TasksCompleted:  e.progress.TasksCompleted,
				LastAccessed:    e.progress.LastAccessed,
			},
		)
	}
	// Most recently accessed first
	sort.SliceStable(enrolled, func(i, j int) bool {
		if enrolled[i].LastAccessed == enrolled[j].LastAccessed {
			return enrolled[i].TrackSlug < enrolled[j].TrackSlug
		}
		return enrolled[i].LastAccessed > enrolled[j].LastAccessed
	})
	return enrolled
}

func (s *Store) getProgress(username, slug string) (tracks.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[username][slug]
	if !ok {
		return tracks.Progress{}, errNotEnrolled()
	}
	return e.progress, nil
}

func (s *Store) updateProgress(
	username string,
	slug string,
	update tracks.ProgressUpdate,
) (tracks.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[username][slug]
	if !ok {
		return tracks.Progress{}, errNotEnrolled()
	}
	e.progress.PercentComplete = update.PercentComplete
	e.progress.TasksCompleted = update.TasksCompleted
	e.progress.CurrentLessonIndex = update.CurrentLessonIndex
	e.progress.LastAccessed = s.timestamp()
	return e.progress, nil
}

func (s *Store) listCompleted(
	username string,
	slug string,
) ([]tracks.CompletedTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[username][slug]
	if !ok {
		return nil, errNotEnrolled()
	}
	// Most recent first
	completed := make([]tracks.CompletedTask, len(e.completions))
	for i, c := range e.completions {
		completed[len(e.completions)-1-i] = c
	}
	return completed, nil
}

// completeTask records a task completion and recomputes the Track's progress
// from the distinct tasks completed so far.
func (s *Store) completeTask(
	username string,
	taskID string,
	completion tracks.TaskCompletion,
) (tracks.CompletedTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[username][completion.TrackSlug]
	if !ok {
		return tracks.CompletedTask{}, errNotEnrolled()
	}
	completed := tracks.CompletedTask{
		TaskID:          taskID,
		TrackSlug:       completion.TrackSlug,
		LessonIndex:     completion.LessonIndex,
		TaskIndex:       completion.TaskIndex,
		Score:           completion.Score,
		XPEarned:        completion.XPEarned,
		FeedbackSummary: completion.FeedbackSummary,
		CompletedAt:     s.timestamp(),
	}
	e.completions = append(e.completions, completed)
	distinct := map[string]struct{}{}
	for _, c := range e.completions {
		distinct[c.TaskID] = struct{}{}
	}
	totalTasks := len(lessonsFor(completion.TrackSlug)) * content.TasksPerLesson
	e.progress.TasksCompleted = len(distinct)
	e.progress.PercentComplete =
		float64(len(distinct)) * 100 / float64(totalTasks)
	if e.progress.PercentComplete > 100 {
		e.progress.PercentComplete = 100
	}
	if completion.LessonIndex > e.progress.CurrentLessonIndex {
		e.progress.CurrentLessonIndex = completion.LessonIndex
	}
	e.progress.LastAccessed = completed.CompletedAt
	return completed, nil
}

func (s *Store) preferences(username, slug string) (tracks.Preferences, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[username][slug]
	if !ok {
		return tracks.Preferences{}, false
	}
	return e.preferences, true
}

func (s *Store) revoke(tokenID string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	// Forget revocations of tokens that have expired anyway
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = expires
}

func (s *Store) isRevoked(tokenID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[tokenID]
	return ok
}

// timestamp must be called with mu held.
func (s *Store) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func errNotEnrolled() error {
	return &meta.ErrNotFound{Reason: "Not enrolled in this track"}
}
