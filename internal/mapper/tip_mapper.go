package mapper

import (
	"fundocs-be/internal/entity"
	"fundocs-be/internal/model"
	"fundocs-be/pkg/vote"

	"gorm.io/datatypes"
)

type TipMapper struct{}

func NewTipMapper() *TipMapper {
	return &TipMapper{}
}

// VotersToJSON converts the voter map into its stored form.
func VotersToJSON(v vote.Voters) datatypes.JSONType[map[string]string] {
	raw := make(map[string]string, len(v))
	for user, dir := range v {
		if dir != vote.None {
			raw[user] = string(dir)
		}
	}
	return datatypes.NewJSONType(raw)
}

// VotersFromJSON drops entries that are not a valid direction.
func VotersFromJSON(j datatypes.JSONType[map[string]string]) vote.Voters {
	out := vote.Voters{}
	for user, raw := range j.Data() {
		if dir, err := vote.Parse(raw); err == nil && dir != vote.None {
			out[user] = dir
		}
	}
	return out
}

func (m *TipMapper) ToEntity(t *model.Tip) *entity.Tip {
	if t == nil {
		return nil
	}
	return &entity.Tip{
		Id:           t.Id,
		UserId:       t.UserId,
		AuthorName:   t.AuthorName,
		AuthorAvatar: t.AuthorAvatar,
		Text:         t.Text,
		Votes:        t.Votes,
		Voters:       VotersFromJSON(t.Voters),
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (m *TipMapper) ToModel(t *entity.Tip) *model.Tip {
	if t == nil {
		return nil
	}
	return &model.Tip{
		Id:           t.Id,
		UserId:       t.UserId,
		AuthorName:   t.AuthorName,
		AuthorAvatar: t.AuthorAvatar,
		Text:         t.Text,
		Votes:        t.Votes,
		Voters:       VotersToJSON(t.Voters),
		Version:      t.Version,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (m *TipMapper) ToEntities(tips []*model.Tip) []*entity.Tip {
	out := make([]*entity.Tip, len(tips))
	for i, t := range tips {
		out[i] = m.ToEntity(t)
	}
	return out
}
