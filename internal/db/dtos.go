package db

import (
	"database/sql"

	"github.com/ChaseHampton/graver/internal/cemetery"
	"github.com/ChaseHampton/graver/internal/memorial"
)

type MemorialDto struct {
	MemorialID    int64          `db:"memorial_id"`
	FindagraveURL sql.NullString `db:"findagrave_url"`
	Prefix        sql.NullString `db:"prefix"`
	Name          sql.NullString `db:"name"`
	Suffix        sql.NullString `db:"suffix"`
	Nickname      sql.NullString `db:"nickname"`
	MaidenName    sql.NullString `db:"maiden_name"`
	OriginalName  sql.NullString `db:"original_name"`
	Famous        bool           `db:"famous"`
	Veteran       bool           `db:"veteran"`
	Birth         sql.NullString `db:"birth"`
	BirthPlace    sql.NullString `db:"birth_place"`
	Death         sql.NullString `db:"death"`
	DeathPlace    sql.NullString `db:"death_place"`
	MemorialType  sql.NullString `db:"memorial_type"`
	CemeteryID    sql.NullInt64  `db:"cemetery_id"`
	BurialPlace   sql.NullString `db:"burial_place"`
	Plot          sql.NullString `db:"plot"`
	Coords        sql.NullString `db:"coords"`
	HasBio        bool           `db:"has_bio"`
}

var memorialColumns = []string{
	"memorial_id", "findagrave_url", "prefix", "name", "suffix", "nickname",
	"maiden_name", "original_name", "famous", "veteran", "birth", "birth_place",
	"death", "death_place", "memorial_type", "cemetery_id", "burial_place",
	"plot", "coords", "has_bio",
}

type CemeteryDto struct {
	CemeteryID    int64          `db:"cemetery_id"`
	FindagraveURL sql.NullString `db:"findagrave_url"`
	Name          sql.NullString `db:"name"`
	Location      sql.NullString `db:"location"`
	Coords        sql.NullString `db:"coords"`
	NumMemorials  int            `db:"num_memorials"`
}

var cemeteryColumns = []string{
	"cemetery_id", "findagrave_url", "name", "location", "coords", "num_memorials",
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func NewMemorialDto(m memorial.Memorial) MemorialDto {
	return MemorialDto{
		MemorialID:    m.MemorialID,
		FindagraveURL: nullString(m.FindagraveURL),
		Prefix:        nullString(m.Prefix),
		Name:          nullString(m.Name),
		Suffix:        nullString(m.Suffix),
		Nickname:      nullString(m.Nickname),
		MaidenName:    nullString(m.MaidenName),
		OriginalName:  nullString(m.OriginalName),
		Famous:        m.Famous,
		Veteran:       m.Veteran,
		Birth:         nullString(m.Birth),
		BirthPlace:    nullString(m.BirthPlace),
		Death:         nullString(m.Death),
		DeathPlace:    nullString(m.DeathPlace),
		MemorialType:  nullString(m.MemorialType),
		CemeteryID:    nullID(m.CemeteryID),
		BurialPlace:   nullString(m.BurialPlace),
		Plot:          nullString(m.Plot),
		Coords:        nullString(m.Coords),
		HasBio:        m.HasBio,
	}
}

func (d MemorialDto) Memorial() memorial.Memorial {
	return memorial.Memorial{
		MemorialID:    d.MemorialID,
		FindagraveURL: d.FindagraveURL.String,
		Prefix:        d.Prefix.String,
		Name:          d.Name.String,
		Suffix:        d.Suffix.String,
		Nickname:      d.Nickname.String,
		MaidenName:    d.MaidenName.String,
		OriginalName:  d.OriginalName.String,
		Famous:        d.Famous,
		Veteran:       d.Veteran,
		Birth:         d.Birth.String,
		BirthPlace:    d.BirthPlace.String,
		Death:         d.Death.String,
		DeathPlace:    d.DeathPlace.String,
		MemorialType:  d.MemorialType.String,
		BurialPlace:   d.BurialPlace.String,
		CemeteryID:    d.CemeteryID.Int64,
		Plot:          d.Plot.String,
		Coords:        d.Coords.String,
		HasBio:        d.HasBio,
	}
}

func NewCemeteryDto(c cemetery.Cemetery) CemeteryDto {
	return CemeteryDto{
		CemeteryID:    c.CemeteryID,
		FindagraveURL: nullString(c.FindagraveURL),
		Name:          nullString(c.Name),
		Location:      nullString(c.Location),
		Coords:        nullString(c.Coords),
		NumMemorials:  c.NumMemorials,
	}
}

func (d CemeteryDto) Cemetery() cemetery.Cemetery {
	return cemetery.Cemetery{
		CemeteryID:    d.CemeteryID,
		FindagraveURL: d.FindagraveURL.String,
		Name:          d.Name.String,
		Location:      d.Location.String,
		Coords:        d.Coords.String,
		NumMemorials:  d.NumMemorials,
	}
}
