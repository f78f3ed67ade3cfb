package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"droptrack/internal/models"
	"droptrack/internal/repositories"
	"droptrack/pkg/rabbitmq"
)

// SaveOutcome tells the caller what a progress write actually did, so the
// UI can distinguish "saved" from "updated" from "nothing changed".
type SaveOutcome string

const (
	OutcomeCreated   SaveOutcome = "created"
	OutcomeUpdated   SaveOutcome = "updated"
	OutcomeUnchanged SaveOutcome = "unchanged"
)

// ProgressService handles the weekly-progress upsert and the aggregated
// week view shown on the dashboard.
type ProgressService struct {
	progressRepo repositories.ProgressRepository
	accountRepo  repositories.AccountRepository
	caseRepo     repositories.CaseRepository
	mqClient     *rabbitmq.Client
}

// NewProgressService creates a new ProgressService. mqClient may be nil, in
// which case progress events are not published.
func NewProgressService(
	progressRepo repositories.ProgressRepository,
	accountRepo repositories.AccountRepository,
	caseRepo repositories.CaseRepository,
	mqClient *rabbitmq.Client,
) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		accountRepo:  accountRepo,
		caseRepo:     caseRepo,
		mqClient:     mqClient,
	}
}

// normalizeDropFields enforces the stored-row invariant: without a farmed
// drop there is no case name and no note. Empty strings are stored as nil.
func normalizeDropFields(dropFarmed bool, caseName, additionalDrop string) (*string, *string) {
	if !dropFarmed {
		return nil, nil
	}
	var casePtr, dropPtr *string
	if caseName != "" {
		casePtr = &caseName
	}
	if additionalDrop != "" {
		dropPtr = &additionalDrop
	}
	return casePtr, dropPtr
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SaveProgress upserts the entry for (user, account, week). The account must
// belong to the user. weekStart is normalized to midnight UTC of its date.
// Saving identical data twice reports OutcomeUnchanged and writes nothing.
func (s *ProgressService) SaveProgress(
	userID, accountID string,
	weekStart time.Time,
	dropFarmed bool,
	caseName, additionalDrop string,
) (SaveOutcome, *models.ProgressEntry, error) {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid or unauthorized account selected: %w", models.ErrUnauthorized)
		}
		return "", nil, err
	}
	if account.UserID != userID {
		return "", nil, fmt.Errorf("invalid or unauthorized account selected: %w", models.ErrUnauthorized)
	}

	week := NormalizeWeekStart(weekStart)
	casePtr, dropPtr := normalizeDropFields(dropFarmed, caseName, additionalDrop)

	existing, err := s.progressRepo.GetByKey(userID, accountID, week)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return "", nil, err
	}

	if existing == nil {
		entry := &models.ProgressEntry{
			UserID:         userID,
			AccountID:      accountID,
			WeekStart:      week,
			DropFarmed:     dropFarmed,
			CaseName:       casePtr,
			AdditionalDrop: dropPtr,
			LastUpdated:    time.Now().UTC(),
		}
		if err := s.progressRepo.Create(entry); err != nil {
			return "", nil, err
		}
		s.publishProgressEvent(entry, OutcomeCreated)
		return OutcomeCreated, entry, nil
	}

	if existing.DropFarmed == dropFarmed &&
		strPtrEqual(existing.CaseName, casePtr) &&
		strPtrEqual(existing.AdditionalDrop, dropPtr) {
		return OutcomeUnchanged, existing, nil
	}

	existing.DropFarmed = dropFarmed
	existing.CaseName = casePtr
	existing.AdditionalDrop = dropPtr
	existing.LastUpdated = time.Now().UTC()
	if err := s.progressRepo.Update(existing); err != nil {
		return "", nil, err
	}
	s.publishProgressEvent(existing, OutcomeUpdated)
	return OutcomeUpdated, existing, nil
}

// UpdateProgressByID updates an existing entry looked up by row id. A
// missing row and a row owned by another user return the same ErrNotFound,
// so ids can't be probed for existence.
func (s *ProgressService) UpdateProgressByID(
	userID, progressID string,
	dropFarmed bool,
	caseName, additionalDrop string,
) (SaveOutcome, error) {
	entry, err := s.progressRepo.GetByID(progressID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("progress entry not found or no permission to edit it: %w", models.ErrNotFound)
		}
		return "", err
	}
	if entry.UserID != userID {
		return "", fmt.Errorf("progress entry not found or no permission to edit it: %w", models.ErrNotFound)
	}

	casePtr, dropPtr := normalizeDropFields(dropFarmed, caseName, additionalDrop)

	if entry.DropFarmed == dropFarmed &&
		strPtrEqual(entry.CaseName, casePtr) &&
		strPtrEqual(entry.AdditionalDrop, dropPtr) {
		return OutcomeUnchanged, nil
	}

	entry.DropFarmed = dropFarmed
	entry.CaseName = casePtr
	entry.AdditionalDrop = dropPtr
	entry.LastUpdated = time.Now().UTC()
	if err := s.progressRepo.Update(entry); err != nil {
		return "", err
	}
	s.publishProgressEvent(entry, OutcomeUpdated)
	return OutcomeUpdated, nil
}

// BuildWeekView joins the user's accounts with their progress entries for
// one week. Every tracked account gets exactly one row, in display order;
// accounts without an entry get placeholder values. Case prices are looked
// up by name and a missing name resolves to 0 rather than an error, so
// renamed or removed catalog cases don't break historical weeks.
func (s *ProgressService) BuildWeekView(userID string, weekStart time.Time) (*models.WeekView, error) {
	week := NormalizeWeekStart(weekStart)
	weekStr := week.Format("2006-01-02")

	accounts, err := s.accountRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	cases, err := s.caseRepo.ListByName()
	if err != nil {
		return nil, err
	}
	priceMap := make(map[string]float64, len(cases))
	for _, item := range cases {
		priceMap[item.CaseName] = item.CasePrice
	}

	accountIDs := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		accountIDs = append(accountIDs, acc.ID)
	}
	entries, err := s.progressRepo.ListForWeek(userID, week, accountIDs)
	if err != nil {
		return nil, err
	}
	entryMap := make(map[string]models.ProgressEntry, len(entries))
	for _, e := range entries {
		entryMap[e.AccountID] = e
	}

	view := &models.WeekView{
		WeekStart: weekStr,
		Rows:      make([]models.WeekViewRow, 0, len(accounts)),
	}
	for _, acc := range accounts {
		row := models.WeekViewRow{
			AccountID:      acc.ID,
			AccountName:    acc.AccountName,
			SteamID:        acc.SteamID,
			WeekStart:      weekStr,
			DropFarmed:     false,
			CaseName:       "N/A",
			AdditionalDrop: "-",
		}
		if entry, ok := entryMap[acc.ID]; ok {
			progressID := entry.ID
			row.ProgressID = &progressID
			row.DropFarmed = entry.DropFarmed
			row.CaseName = ""
			row.AdditionalDrop = ""
			if entry.CaseName != nil {
				row.CaseName = *entry.CaseName
			}
			if entry.AdditionalDrop != nil {
				row.AdditionalDrop = *entry.AdditionalDrop
			}
			if entry.DropFarmed && entry.CaseName != nil && *entry.CaseName != "" {
				row.CaseValue = priceMap[*entry.CaseName]
				view.TotalValue += row.CaseValue
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

// publishProgressEvent emits a progress-saved event; failures only log, a
// broker outage must not fail the user's write.
func (s *ProgressService) publishProgressEvent(entry *models.ProgressEntry, outcome SaveOutcome) {
	if s.mqClient == nil {
		return
	}
	event := rabbitmq.ProgressEvent{
		ProgressID: entry.ID,
		UserID:     entry.UserID,
		AccountID:  entry.AccountID,
		WeekStart:  entry.WeekStart.Format("2006-01-02"),
		DropFarmed: entry.DropFarmed,
		Outcome:    string(outcome),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.mqClient.PublishProgressSaved(event); err != nil {
		log.Printf("Warning: failed to publish progress event for entry %s: %v", entry.ID, err)
	}
}
