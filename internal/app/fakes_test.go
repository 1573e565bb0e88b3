package app

import (
	"context"
	"io"
	"time"

	"pill_reminder_bot/internal/domain/pill"
	"pill_reminder_bot/internal/domain/settings"
	idb "pill_reminder_bot/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeCycleRepo keeps cycles in memory per chat, newest last.
type fakeCycleRepo struct {
	cycles      map[int64][]*pill.Cycle
	updatedRecs []pill.DayRecord
	fetchErr    error
	fetchAllErr error
	saveErr     error
	updateErr   error
}

func newFakeCycleRepo() *fakeCycleRepo {
	return &fakeCycleRepo{cycles: make(map[int64][]*pill.Cycle)}
}

func (r *fakeCycleRepo) FetchCurrentCycle(_ context.Context, chatID int64) (*pill.Cycle, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	list := r.cycles[chatID]
	if len(list) == 0 {
		return nil, idb.ErrCycleNotFound
	}
	c := *list[len(list)-1]
	return &c, nil
}

func (r *fakeCycleRepo) FetchCycle(_ context.Context, id uuid.UUID) (*pill.Cycle, error) {
	for _, list := range r.cycles {
		for _, c := range list {
			if c.ID == id {
				cp := *c
				return &cp, nil
			}
		}
	}
	return nil, idb.ErrCycleNotFound
}

func (r *fakeCycleRepo) FetchAllCycles(_ context.Context, chatID int64) ([]*pill.Cycle, error) {
	if r.fetchAllErr != nil {
		return nil, r.fetchAllErr
	}
	return r.cycles[chatID], nil
}

func (r *fakeCycleRepo) SaveCycle(_ context.Context, chatID int64, c *pill.Cycle) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *c
	r.cycles[chatID] = append(r.cycles[chatID], &cp)
	return nil
}

func (r *fakeCycleRepo) UpdateRecord(_ context.Context, cycleID uuid.UUID, rec pill.DayRecord) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for _, list := range r.cycles {
		for _, c := range list {
			if c.ID != cycleID {
				continue
			}
			for i := range c.Records {
				if c.Records[i].CycleDay == rec.CycleDay {
					c.Records[i] = rec
				}
			}
		}
	}
	r.updatedRecs = append(r.updatedRecs, rec)
	return nil
}

type fakeSettingsRepo struct {
	byChat  map[int64]*settings.UserSettings
	saveErr error
	listErr error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{byChat: make(map[int64]*settings.UserSettings)}
}

func (r *fakeSettingsRepo) Fetch(_ context.Context, chatID int64) (*settings.UserSettings, error) {
	st, ok := r.byChat[chatID]
	if !ok {
		return nil, idb.ErrSettingsNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, s *settings.UserSettings) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *s
	r.byChat[s.ChatID] = &cp
	return nil
}

func (r *fakeSettingsRepo) ListNotificationEnabled(_ context.Context) ([]*settings.UserSettings, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*settings.UserSettings
	for _, st := range r.byChat {
		if st.NotificationsEnabled {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

type sentMessage struct {
	chatID  int64
	text    string
	options *telebot.SendOptions
}

type fakeTelegramClient struct {
	sent    []sentMessage
	sendErr error
}

func (c *fakeTelegramClient) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, sentMessage{chatID: chatID, text: text, options: options})
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
