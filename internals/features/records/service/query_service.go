package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/model"
)

// SearchLimit caps blank and free-text searches.
const SearchLimit = 100

var victimNameColumns = []string{
	"name_farsi", "name_english",
	"first_name_farsi", "last_name_farsi",
	"first_name_english", "last_name_english",
}

type QueryService struct {
	DB *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{DB: db}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Get returns the subject with its media and links, or nil when the id is unknown.
func (s *QueryService) Get(ctx context.Context, spec *model.KindSpec, id uint) (*dto.SubjectDetail, error) {
	db := s.DB.WithContext(ctx)

	subject := spec.New()
	if err := db.First(subject, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", spec.Kind, err)
	}

	media := make([]model.Media, 0)
	if err := db.Where(spec.MediaColumn+" = ?", id).
		Order("is_primary DESC").Order("uploaded_at ASC").Order("id ASC").
		Find(&media).Error; err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}

	links := make([]model.Link, 0)
	if spec.HasLinks() {
		if err := db.Table(spec.LinkTable).
			Select("id, url, created_at").
			Where(spec.LinkColumn+" = ?", id).
			Order("created_at ASC").Order("id ASC").
			Scan(&links).Error; err != nil {
			return nil, fmt.Errorf("get links: %w", err)
		}
	}

	out := &dto.SubjectDetail{Record: subject, Media: media, Links: links}
	for i := range media {
		if media[i].IsPrimary {
			out.PrimaryMedia = &media[i]
			break
		}
	}
	return out, nil
}

// List pages subjects newest first.
func (s *QueryService) List(ctx context.Context, spec *model.KindSpec, limit, offset int) ([]dto.SubjectListItem, error) {
	return s.find(ctx, spec, func(q *gorm.DB) *gorm.DB {
		return q.Limit(limit).Offset(offset)
	})
}

// Search matches q against search_text. A blank query lists the newest SearchLimit rows.
func (s *QueryService) Search(ctx context.Context, spec *model.KindSpec, q string) ([]dto.SubjectListItem, error) {
	q = model.NormalizeSearch(q)
	if q == "" {
		return s.List(ctx, spec, SearchLimit, 0)
	}
	return s.find(ctx, spec, func(db *gorm.DB) *gorm.DB {
		return db.Where("search_text LIKE ? ESCAPE '\\'", likePattern(q)).Limit(SearchLimit)
	})
}

// VictimFilter holds the optional advanced-search inputs; zero values are ignored.
type VictimFilter struct {
	Name      string
	Location  string
	BirthYear *int
}

func (f VictimFilter) predicates() *Predicates {
	p := &Predicates{}
	if name := strings.TrimSpace(f.Name); name != "" {
		p.Add(ContainsFoldAny(name, victimNameColumns...))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		p.Add(ContainsFold("location", loc))
	}
	if f.BirthYear != nil {
		p.Add(Equals("birth_year", *f.BirthYear))
	}
	return p
}

// AdvancedSearch ANDs the supplied victim filters in a single query.
func (s *QueryService) AdvancedSearch(ctx context.Context, f VictimFilter) ([]dto.SubjectListItem, error) {
	spec := model.MustKind(model.KindVictim)
	p := f.predicates()
	return s.find(ctx, spec, func(db *gorm.DB) *gorm.DB {
		if p.Len() > 0 {
			db = db.Where(p.Build())
		}
		return db.Limit(SearchLimit)
	})
}

func (s *QueryService) find(ctx context.Context, spec *model.KindSpec, scope func(*gorm.DB) *gorm.DB) ([]dto.SubjectListItem, error) {
	q := s.DB.WithContext(ctx).Model(spec.New()).
		Order("submitted_at DESC").Order("id DESC")
	subjects, err := spec.Find(scope(q))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", spec.Kind, err)
	}
	return s.withMedia(ctx, spec, subjects)
}

// withMedia loads media for the whole page in one query and groups it by owner.
func (s *QueryService) withMedia(ctx context.Context, spec *model.KindSpec, subjects []model.Subject) ([]dto.SubjectListItem, error) {
	items := make([]dto.SubjectListItem, len(subjects))
	if len(subjects) == 0 {
		return items, nil
	}

	ids := make([]uint, len(subjects))
	for i, sub := range subjects {
		ids[i] = sub.GetID()
	}

	var media []model.Media
	if err := s.DB.WithContext(ctx).
		Select("id", "kind", "public_url", "is_primary", spec.MediaColumn).
		Where(spec.MediaColumn+" IN ?", ids).
		Order("is_primary DESC").Order("id ASC").
		Find(&media).Error; err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	byOwner := make(map[uint][]model.MediaSummary, len(subjects))
	for i := range media {
		owner := spec.MediaOwner(&media[i])
		byOwner[owner] = append(byOwner[owner], model.MediaSummary{
			Kind:      media[i].Kind,
			URL:       media[i].PublicURL,
			IsPrimary: media[i].IsPrimary,
		})
	}

	for i, sub := range subjects {
		summaries := byOwner[sub.GetID()]
		if summaries == nil {
			summaries = []model.MediaSummary{}
		}
		items[i] = dto.SubjectListItem{Record: sub, Media: summaries}
	}
	return items, nil
}
