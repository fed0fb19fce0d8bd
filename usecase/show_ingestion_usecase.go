package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/playlist"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/clients/mixcloud"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/metrics"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/utils"
)

var (
	ErrInvalidShowRequest = errors.New("invalid show request")
	ErrShowPersistence    = errors.New("failed to save show")
	ErrNotConfigured      = errors.New("server misconfiguration")
)

// IngestionState names the steps of one ingestion run.
type IngestionState string

const (
	StateValidating       IngestionState = "validating"
	StatePersistingShow   IngestionState = "persisting_show"
	StatePersistingTracks IngestionState = "persisting_tracks"
	StateMirroringCMS     IngestionState = "mirroring_cms"
	StateLinking          IngestionState = "linking"
	StateDone             IngestionState = "done"
	StatePartialFailure   IngestionState = "partial_failure"
	StateRejected         IngestionState = "rejected"
	StateFailed           IngestionState = "failed"
)

const mixcloudHost = "mixcloud.com"

type IShowIngestionUsecase interface {
	// CreateShow runs the ingestion pipeline. A nil error means a show row
	// exists; the response then tells whether every step succeeded.
	CreateShow(ctx context.Context, req dto.CreateShowRequest, cover *dto.CoverImage) (*dto.CreateShowResponse, error)
}

type ShowIngestionUsecase struct {
	shows  repository.IShow
	mirror repository.IShowMirror
	events repository.IShowEvents     // optional
	cache  repository.IShowCache      // optional
	audit  repository.IIngestionAudit // optional
	now    func() time.Time
}

func NewShowIngestionUsecase(shows repository.IShow, mirror repository.IShowMirror) *ShowIngestionUsecase {
	return &ShowIngestionUsecase{shows: shows, mirror: mirror, now: time.Now}
}

// WithEvents enables show.ingested events (fluent)
func (u *ShowIngestionUsecase) WithEvents(events repository.IShowEvents) *ShowIngestionUsecase {
	u.events = events
	return u
}

// WithCache enables show cache invalidation (fluent)
func (u *ShowIngestionUsecase) WithCache(cache repository.IShowCache) *ShowIngestionUsecase {
	u.cache = cache
	return u
}

// WithAudit enables the ingestion audit log (fluent)
func (u *ShowIngestionUsecase) WithAudit(audit repository.IIngestionAudit) *ShowIngestionUsecase {
	u.audit = audit
	return u
}

func (u *ShowIngestionUsecase) WithClock(now func() time.Time) *ShowIngestionUsecase {
	u.now = now
	return u
}

// stepResult is what one step hands back to the orchestrator.
type stepResult struct {
	errs     []string
	warnings []string
}

func (r *stepResult) fail(format string, args ...interface{}) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func (r *stepResult) warn(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// ingestionRun aggregates step results and the states visited.
type ingestionRun struct {
	log      *logrus.Entry
	states   []string
	errs     []string
	warnings []string
}

func (r *ingestionRun) enter(state IngestionState) {
	r.states = append(r.states, string(state))
	r.log.WithField("state", state).Debug("Ingestion step")
}

func (r *ingestionRun) collect(res stepResult) bool {
	r.errs = append(r.errs, res.errs...)
	r.warnings = append(r.warnings, res.warnings...)
	return len(res.errs) == 0
}

type validatedShow struct {
	title       string
	mixcloudURL string
	description string
	published   time.Time
	playlist    string
}

func (u *ShowIngestionUsecase) CreateShow(ctx context.Context, req dto.CreateShowRequest, cover *dto.CoverImage) (*dto.CreateShowResponse, error) {
	run := &ingestionRun{log: logger.FromContext(ctx), errs: []string{}, warnings: []string{}}

	if u.shows == nil || u.mirror == nil {
		run.log.Error("Show ingestion called without database or storyblok configured")
		metrics.ObserveIngestion(metrics.OutcomeFailed, 0)
		return nil, ErrNotConfigured
	}

	run.enter(StateValidating)
	input, err := u.validate(req)
	if err != nil {
		run.enter(StateRejected)
		metrics.ObserveIngestion(metrics.OutcomeInvalid, 0)
		return nil, err
	}

	run.enter(StatePersistingShow)
	show, res := u.persistShow(ctx, input)
	run.collect(res)
	if show == nil {
		run.enter(StateFailed)
		u.record(ctx, run, nil, 0, http.StatusInternalServerError)
		metrics.ObserveIngestion(metrics.OutcomeFailed, 0)
		return nil, ErrShowPersistence
	}

	resp := &dto.CreateShowResponse{ShowID: &show.ID}

	var parsed []playlist.ParsedTrack
	if strings.TrimSpace(input.playlist) != "" {
		run.enter(StatePersistingTracks)
		var count int
		parsed, count, res = u.persistTracks(ctx, show.ID, input.playlist)
		run.collect(res)
		resp.TracksCount = count
	}

	run.enter(StateMirroringCMS)
	ref, res := u.mirrorShow(ctx, show, parsed, cover)
	if run.collect(res) && ref != nil {
		resp.StoryblokID = &ref.ID
		cmsSlug := ref.Slug
		if cmsSlug == "" {
			cmsSlug = show.Slug
		}
		resp.StoryblokSlug = &cmsSlug
		run.enter(StateLinking)
		run.collect(u.link(ctx, show, ref.ID, cmsSlug))
	}

	success := len(run.errs) == 0
	u.afterIngestion(ctx, run, show, resp, success)

	resp.Success = success
	resp.Errors = run.errs
	resp.Warnings = run.warnings
	status := http.StatusOK
	outcome := metrics.OutcomeSuccess
	if success {
		run.enter(StateDone)
		resp.Message = fmt.Sprintf("Show %q created", show.Title)
	} else {
		run.enter(StatePartialFailure)
		status = http.StatusMultiStatus
		outcome = metrics.OutcomePartial
		resp.Message = fmt.Sprintf("Show %q created with %d error(s)", show.Title, len(run.errs))
	}

	u.record(ctx, run, show, resp.TracksCount, status)
	metrics.ObserveIngestion(outcome, resp.TracksCount)
	run.log.WithFields(logrus.Fields{
		"showId":   show.ID,
		"slug":     show.Slug,
		"tracks":   resp.TracksCount,
		"errors":   len(run.errs),
		"warnings": len(run.warnings),
	}).Info("Show ingested")
	return resp, nil
}

func (u *ShowIngestionUsecase) validate(req dto.CreateShowRequest) (*validatedShow, error) {
	input := &validatedShow{
		title:       strings.TrimSpace(req.Title),
		mixcloudURL: strings.TrimSpace(req.MixcloudURL),
		description: strings.TrimSpace(req.Description),
		playlist:    req.PlaylistText,
	}
	if input.title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidShowRequest)
	}
	if input.mixcloudURL == "" {
		return nil, fmt.Errorf("%w: mixcloud_url is required", ErrInvalidShowRequest)
	}
	if !strings.Contains(strings.ToLower(input.mixcloudURL), mixcloudHost) {
		return nil, fmt.Errorf("%w: mixcloud_url must be a %s URL", ErrInvalidShowRequest, mixcloudHost)
	}
	input.published = u.now().UTC()
	if v := strings.TrimSpace(req.PublishedDate); v != "" {
		published, err := utils.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("%w: published_date: %v", ErrInvalidShowRequest, err)
		}
		input.published = published
	}
	return input, nil
}

func (u *ShowIngestionUsecase) persistShow(ctx context.Context, input *validatedShow) (*model.Show, stepResult) {
	var res stepResult
	log := logger.FromContext(ctx)

	embed, err := mixcloud.EmbedHTML(input.mixcloudURL)
	if err != nil {
		res.warn("embed could not be generated: %v", err)
	}

	slug := utils.Slugify(input.title)
	taken, err := u.shows.SlugsWithPrefix(ctx, slug)
	if err != nil {
		log.WithField("error", err).Warn("Unable to check slug collisions")
		res.warn("slug uniqueness could not be checked: %v", err)
	} else {
		slug = utils.UniqueSlug(slug, taken)
	}

	now := u.now().UTC()
	show := &model.Show{
		Title:         input.title,
		Slug:          slug,
		Description:   input.description,
		MixcloudURL:   input.mixcloudURL,
		MixcloudEmbed: embed,
		PublishedDate: input.published,
		Status:        model.ShowStatusPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := u.shows.CreateShow(ctx, show)
	if err != nil {
		log.WithField("error", err).Error("Error while saving show")
		res.fail("failed to save show: %v", err)
		return nil, res
	}
	show.ID = id
	return show, res
}

func (u *ShowIngestionUsecase) persistTracks(ctx context.Context, showID int64, text string) ([]playlist.ParsedTrack, int, stepResult) {
	var res stepResult
	parsed := playlist.Parse(text)
	for _, e := range parsed.Errors {
		res.warn("tracklist %s", e)
	}
	res.warnings = append(res.warnings, prefixAll("tracklist ", parsed.Warnings)...)

	if len(parsed.Tracks) == 0 {
		res.warn("tracklist contained no tracks")
		return parsed.Tracks, 0, res
	}

	now := u.now().UTC()
	tracks := make([]model.Track, 0, len(parsed.Tracks))
	for _, pt := range parsed.Tracks {
		tracks = append(tracks, model.Track{
			ShowID:    showID,
			Position:  pt.Position,
			Hour:      pt.Hour,
			Artist:    pt.Artist,
			Track:     pt.Track,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	count, err := u.shows.CreateTracks(ctx, showID, tracks)
	if err != nil {
		logger.FromContext(ctx).WithField("error", err).Error("Error while saving tracks")
		res.fail("tracklist failed to save: %v", err)
		return parsed.Tracks, 0, res
	}
	return parsed.Tracks, count, res
}

func (u *ShowIngestionUsecase) mirrorShow(ctx context.Context, show *model.Show, tracks []playlist.ParsedTrack, cover *dto.CoverImage) (*dto.StoryRef, stepResult) {
	var res stepResult
	if tracks == nil {
		tracks = []playlist.ParsedTrack{}
	}
	ref, err := u.mirror.CreateShowStory(ctx, dto.ShowStoryInput{
		ShowID:        show.ID,
		Title:         show.Title,
		Slug:          show.Slug,
		Description:   show.Description,
		MixcloudURL:   show.MixcloudURL,
		MixcloudEmbed: show.MixcloudEmbed,
		PublishedDate: show.PublishedDate,
	}, tracks, cover)
	if err != nil {
		logger.FromContext(ctx).WithField("error", err).Error("Error while creating storyblok story")
		res.fail("storyblok story creation failed: %v", err)
		return nil, res
	}
	return ref, res
}

func (u *ShowIngestionUsecase) link(ctx context.Context, show *model.Show, storyblokID int64, slug string) stepResult {
	var res stepResult
	if err := u.shows.LinkStoryblok(ctx, show.ID, storyblokID, slug); err != nil {
		logger.FromContext(ctx).WithField("error", err).Warn("Error while linking show to storyblok story")
		res.warn("show saved but not linked to storyblok story %d: %v", storyblokID, err)
		return res
	}
	show.StoryblokID = &storyblokID
	show.Slug = slug
	return res
}

// afterIngestion runs the side effects that never change the outcome.
func (u *ShowIngestionUsecase) afterIngestion(ctx context.Context, run *ingestionRun, show *model.Show, resp *dto.CreateShowResponse, success bool) {
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, show.Slug); err != nil {
			run.log.WithField("error", err).Warn("Unable to invalidate show cache")
		}
	}
	if u.events != nil {
		event := model.ShowIngestedEvent{
			ShowID:      show.ID,
			Slug:        show.Slug,
			Title:       show.Title,
			MixcloudURL: show.MixcloudURL,
			StoryblokID: show.StoryblokID,
			TracksCount: resp.TracksCount,
			Partial:     !success,
			RequestID:   logger.RequestID(ctx),
			IngestedAt:  u.now().UTC(),
		}
		if err := u.events.PublishShowIngested(ctx, event); err != nil {
			run.log.WithField("error", err).Warn("Unable to publish show event")
			run.warnings = append(run.warnings, fmt.Sprintf("show event not published: %v", err))
		}
	}
}

func (u *ShowIngestionUsecase) record(ctx context.Context, run *ingestionRun, show *model.Show, tracks, status int) {
	if u.audit == nil {
		return
	}
	audit := model.IngestionAudit{
		RequestID:   logger.RequestID(ctx),
		FinalState:  run.states[len(run.states)-1],
		States:      run.states,
		Errors:      run.errs,
		Warnings:    run.warnings,
		TracksCount: tracks,
		StatusCode:  status,
		CreatedAt:   u.now().UTC(),
	}
	if show != nil {
		audit.ShowID = show.ID
		audit.Title = show.Title
		audit.Slug = show.Slug
	}
	if err := u.audit.RecordIngestion(ctx, audit); err != nil {
		run.log.WithField("error", err).Warn("Unable to record ingestion audit")
	}
}

func prefixAll(prefix string, values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, prefix+v)
	}
	return out
}
