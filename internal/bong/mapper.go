package bong

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tvheim/bongtv/internal/domain"
)

// Role group labels as the provider sends them.
const (
	roleDirectors = "Regisseur"
	roleAuthors   = "Autor"
	roleComposers = "Musik"
	roleActors    = "Schauspieler"
)

// mapper turns wire DTOs into domain objects. It carries the pieces every
// construction needs: the host for image and file URLs, the optional
// series-title pattern, and the detail fetcher bound into each broadcast.
type mapper struct {
	host        string
	showPattern *regexp.Regexp
	fetch       domain.DetailFetcher
}

func (m *mapper) channel(dto channelDTO) domain.Channel {
	return domain.Channel{
		ID:         dto.ID,
		Name:       domain.Sanitize(dto.Name),
		LogoURL:    m.channelLogo(dto.ID),
		Position:   int(dto.Position),
		Recordable: bool(dto.Recordable),
		HD:         bool(dto.HD),
	}
}

func (m *mapper) channelLogo(channelID int) string {
	return m.host + "/images/channel/b/" + strconv.Itoa(channelID) + ".png"
}

func (m *mapper) broadcast(dto broadcastDTO) *domain.Broadcast {
	starts := time.UnixMilli(dto.StartsAtMS)
	ends := time.UnixMilli(dto.EndsAtMS)

	b := &domain.Broadcast{
		ID:             dto.ID,
		Title:          domain.Sanitize(dto.Title),
		Subtitle:       domain.Sanitize(dto.Subtitle),
		ProductionYear: int(dto.ProductionYear),
		Country:        domain.Sanitize(dto.Country),
		StartsAt:       starts,
		EndsAt:         ends,
		Duration:       int((dto.EndsAtMS - dto.StartsAtMS) / 1000 / 60),
		ThumbURL:       m.imageURL(dto.Image),
		ChannelID:      dto.ChannelID,
		ChannelName:    domain.Sanitize(dto.ChannelName),
		ChannelLogoURL: m.channelLogo(dto.ChannelID),
		Categories:     mapCategories(dto.Categories),
		Outline:        domain.Sanitize(dto.ShortText),
		HD:             bool(dto.HD),
	}
	if dto.Serie != nil {
		b.Season = int(dto.Serie.Season)
		b.Episode = int(dto.Serie.Episode)
		b.TotalEpisodes = int(dto.Serie.TotalEpisodes)
	}
	if m.showPattern != nil {
		b.SetTVShowPattern(m.showPattern)
	}
	if m.fetch != nil {
		b.BindDetailFetcher(m.fetch)
	}
	return b
}

// imageURL resolves a broadcast image. Broadcasts without an image yield an
// empty URL rather than a dangling host prefix.
func (m *mapper) imageURL(img *imageDTO) string {
	if img == nil || img.Href == "" {
		return ""
	}
	return m.absURL(img.Href)
}

// absURL prefixes a relative provider href with the host; absolute hrefs pass
// through.
func (m *mapper) absURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return m.host + href
}

func mapCategories(dtos []categoryDTO) []string {
	seen := make(map[string]struct{}, len(dtos))
	var out []string
	for _, dto := range dtos {
		name := domain.Sanitize(dto.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *mapper) details(dto broadcastDetailDTO) *domain.BroadcastDetails {
	d := &domain.BroadcastDetails{
		Rating: float64(dto.Rating),
		Votes:  int(dto.Votes),
		Plot:   domain.Sanitize(dto.LongText),
		Hint:   domain.Sanitize(dto.HintText),
	}
	for _, role := range dto.Roles {
		switch role.Name {
		case roleDirectors:
			d.Directors = mapNames(role.People)
		case roleAuthors:
			d.Authors = mapNames(role.People)
		case roleComposers:
			d.Composers = mapNames(role.People)
		case roleActors:
			d.Actors = mapActors(role.People)
		}
	}
	return d
}

// mapNames collapses a person group into a deduplicated, sorted name list.
// Entries without a name are dropped.
func mapNames(people []personDTO) []string {
	seen := make(map[string]struct{}, len(people))
	var out []string
	for _, p := range people {
		name := domain.Sanitize(p.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func mapActors(people []personDTO) []domain.Actor {
	seen := make(map[domain.Actor]struct{}, len(people))
	var out []domain.Actor
	for _, p := range people {
		a := domain.Actor{
			Name: domain.Sanitize(p.Name),
			Role: domain.Sanitize(p.Role),
		}
		if a.Name == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Role < out[j].Role
	})
	return out
}

func (m *mapper) recording(dto recordingDTO) *domain.Recording {
	r := &domain.Recording{
		Broadcast:   m.broadcast(dto.Broadcast),
		RecordingID: dto.ID,
		Status:      dto.Status,
		Quality:     int(dto.Quality),
	}
	if len(dto.Files) > 0 {
		r.URLs = make(map[domain.Quality]string, len(dto.Files))
		for _, f := range dto.Files {
			if f.Href == "" {
				continue
			}
			q := domain.Quality(strings.ToUpper(f.Quality))
			switch q {
			case domain.QualityNQ, domain.QualityHQ, domain.QualityHD:
				r.URLs[q] = m.absURL(f.Href)
			}
		}
	}
	return r
}

func (m *mapper) subscription(dto subscriptionDTO) domain.Subscription {
	return domain.Subscription{
		UsedHours:        float64(dto.UsedCap),
		MaxHours:         float64(dto.MaxCap),
		UsedSpacePercent: int(dto.UsedSpacePercent),
	}
}
