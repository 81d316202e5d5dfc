package workout

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/systomic777/alex-workout/guide"
	"github.com/systomic777/alex-workout/guide/audio"
	"github.com/systomic777/alex-workout/guide/cache"
	"github.com/systomic777/alex-workout/guide/engines"
)

// cueTimeout bounds one cue's acquisition and playback. A cue that
// takes longer than this is abandoned; the countdown has moved on.
const cueTimeout = 15 * time.Second

// GuideSpeaker voices cues through the guidance cache and the
// single-slot player. Every call is asynchronous; panics and errors
// are absorbed here so nothing crosses back into the tick loop. When
// synthesis is exhausted it falls back to live on-device speech, so
// the countdown is never silent just because the network is.
type GuideSpeaker struct {
	cache     *cache.Cache
	player    *audio.Player
	native    engines.LiveSpeaker
	exercises []guide.Exercise

	fitSafety  float64
	fitMaxRate float64

	// session scopes every in-flight cue goroutine. Stop cancels the
	// current session and opens a fresh one, so a schedule still
	// resolving cues when the user jumps never reaches the player.
	mu            sync.Mutex
	session       context.Context
	sessionCancel context.CancelFunc
}

// NewGuideSpeaker creates the cache-backed speaker for an exercise
// sequence. native may be nil when no on-device binary exists.
func NewGuideSpeaker(c *cache.Cache, p *audio.Player, native engines.LiveSpeaker, exercises []guide.Exercise, cfg guide.Config) *GuideSpeaker {
	snapshot := make([]guide.Exercise, len(exercises))
	copy(snapshot, exercises)
	session, cancel := context.WithCancel(context.Background())
	return &GuideSpeaker{
		cache:         c,
		player:        p,
		native:        native,
		exercises:     snapshot,
		fitSafety:     cfg.FitSafety,
		fitMaxRate:    cfg.FitMaxRate,
		session:       session,
		sessionCancel: cancel,
	}
}

// cueContext derives a cue-scoped context from the current session.
func (s *GuideSpeaker) cueContext() (context.Context, context.CancelFunc) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	return context.WithTimeout(session, cueTimeout)
}

func (s *GuideSpeaker) Announce(exerciseID string) <-chan struct{} {
	return s.speak(guide.Announce(exerciseID), 0)
}

func (s *GuideSpeaker) Number(second int) {
	if second > guide.MaxNumberCue {
		// Beyond the pre-generated range; render live instead of
		// filling the cache with one-off numbers.
		go s.liveSpeak(strconv.Itoa(second))
		return
	}
	s.speak(guide.Number(second), 0)
}

func (s *GuideSpeaker) Phrase(id string) {
	s.speak(guide.Phrase(id), 0)
}

func (s *GuideSpeaker) CountReps(remaining int, within time.Duration) {
	s.speak(guide.Number(remaining), within)
}

// Stop cancels every in-flight cue, pending schedules included, and
// fades out whatever is playing.
func (s *GuideSpeaker) Stop() {
	s.mu.Lock()
	s.sessionCancel()
	s.session, s.sessionCancel = context.WithCancel(context.Background())
	s.mu.Unlock()
	s.player.Stop()
}

// Pause suspends the playing clip in place. With the scheduled
// strategy the whole phase is one clip, so this is what actually
// silences the countdown while the run is paused.
func (s *GuideSpeaker) Pause() {
	s.player.Pause()
}

// Resume continues the paused clip from where it stopped.
func (s *GuideSpeaker) Resume() {
	s.player.Resume()
}

// speak acquires and plays one cue. The returned channel closes when
// the clip finishes, fails, or is interrupted.
func (s *GuideSpeaker) speak(spec guide.CueSpec, fit time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer swallowPanic(spec.Token())

		ctx, cancel := s.cueContext()
		defer cancel()

		payload, err := s.cache.GetOrGenerate(ctx, spec, s.exercises)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("cue acquisition failed", "cue", spec.Token(), "err", err)
			s.fallback(ctx, spec)
			return
		}
		pcm, err := audio.ToPCM(ctx, payload, s.player.SampleRate())
		if err != nil {
			log.Warn("cue decode failed", "cue", spec.Token(), "err", err)
			return
		}
		if fit > 0 {
			rate := guide.FitRate(audio.Duration(pcm, s.player.SampleRate()), fit, s.fitSafety, s.fitMaxRate)
			pcm = audio.ApplyRate(pcm, rate)
		}
		if ctx.Err() != nil {
			return
		}
		playDone, err := s.player.Play(pcm)
		if err != nil {
			log.Debug("cue playback failed", "cue", spec.Token(), "err", err)
			return
		}
		<-playDone
	}()
	return done
}

// fallback speaks the cue's literal text through the on-device voice.
func (s *GuideSpeaker) fallback(ctx context.Context, spec guide.CueSpec) {
	if s.native == nil {
		return
	}
	text, err := guide.Script(spec, s.exercises)
	if err != nil {
		return
	}
	if err := s.native.Speak(ctx, text); err != nil {
		log.Warn("live speech fallback failed", "cue", spec.Token(), "err", err)
	}
}

func (s *GuideSpeaker) liveSpeak(text string) {
	defer swallowPanic(text)
	if s.native == nil {
		return
	}
	ctx, cancel := s.cueContext()
	defer cancel()
	if err := s.native.Speak(ctx, text); err != nil {
		log.Warn("live speech failed", "text", text, "err", err)
	}
}

// SchedulePhase pre-renders a whole countdown as one timeline and
// plays it as a single clip, immune to frame drops. Cues that fail to
// resolve leave silence at their slot; the track still plays.
func (s *GuideSpeaker) SchedulePhase(total time.Duration, cues []timedCue) {
	go func() {
		defer swallowPanic("schedule phase")

		ctx, cancel := s.cueContext()
		defer cancel()

		tl := audio.NewTimeline(total, s.player.SampleRate())
		for _, c := range cues {
			pcm, err := s.resolve(ctx, c.Spec)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn("scheduled cue skipped", "cue", c.Spec.Token(), "err", err)
				continue
			}
			if err := tl.ScheduleAt(c.Offset, pcm); err != nil {
				log.Warn("scheduled cue dropped", "cue", c.Spec.Token(), "err", err)
			}
		}
		if ctx.Err() != nil {
			return
		}
		if playDone, err := s.player.Play(tl.Render()); err == nil {
			<-playDone
		}
	}()
}

// ScheduleReps pre-renders the whole rep count-out, each call-out
// tempo-fitted into its rep window.
func (s *GuideSpeaker) ScheduleReps(reps int, repDuration time.Duration) {
	go func() {
		defer swallowPanic("schedule reps")
		if reps <= 0 || repDuration <= 0 {
			return
		}

		ctx, cancel := s.cueContext()
		defer cancel()

		rate := s.player.SampleRate()
		tl := audio.NewTimeline(time.Duration(reps)*repDuration, rate)
		for i := 0; i < reps; i++ {
			remaining := reps - i
			pcm, err := s.resolve(ctx, guide.Number(remaining))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn("rep cue skipped", "reps", remaining, "err", err)
				continue
			}
			fit := guide.FitRate(audio.Duration(pcm, rate), repDuration, s.fitSafety, s.fitMaxRate)
			if err := tl.ScheduleAt(time.Duration(i)*repDuration, audio.ApplyRate(pcm, fit)); err != nil {
				log.Warn("rep cue dropped", "reps", remaining, "err", err)
			}
		}
		if ctx.Err() != nil {
			return
		}
		if playDone, err := s.player.Play(tl.Render()); err == nil {
			<-playDone
		}
	}()
}

func (s *GuideSpeaker) resolve(ctx context.Context, spec guide.CueSpec) ([]byte, error) {
	payload, err := s.cache.GetOrGenerate(ctx, spec, s.exercises)
	if err != nil {
		return nil, err
	}
	return audio.ToPCM(ctx, payload, s.player.SampleRate())
}

func swallowPanic(what string) {
	if p := recover(); p != nil {
		log.Error("cue path panicked", "in", what, "panic", p)
	}
}

var (
	_ Speaker        = (*GuideSpeaker)(nil)
	_ phaseScheduler = (*GuideSpeaker)(nil)
)
