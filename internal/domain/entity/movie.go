// Package entity 定义领域实体
package entity

// Movie 电影实体
// titlewords 与 embedding_vector 由离线处理流水线写入：
// 前者是去停用词后的标题词 JSON 数组，后者是外部生成的向量 JSON 数组。
type Movie struct {
	ID          int     `json:"id" gorm:"primaryKey"`
	IMDBID      string  `json:"imdb_id,omitempty" gorm:"column:imdb_id;type:varchar(16);uniqueIndex"`
	Title       string  `json:"title" gorm:"type:varchar(512);index"`
	Overview    string  `json:"overview,omitempty" gorm:"type:text"`
	ReleaseDate string  `json:"release_date,omitempty" gorm:"type:varchar(16)"`
	VoteAverage float64 `json:"vote_average" gorm:"index"`
	VoteCount   int     `json:"vote_count"`
	PosterPath  string  `json:"poster_path,omitempty" gorm:"type:varchar(255)"`
	TitleWords  string  `json:"titlewords,omitempty" gorm:"column:titlewords;type:text"`
	Embedding   string  `json:"-" gorm:"column:embedding_vector;type:text"`

	Genres []*Genre `json:"genres,omitempty" gorm:"many2many:movie_genre"`
	Actors []*Actor `json:"actors,omitempty" gorm:"many2many:movie_actor"`
}

// TableName 指定表名
func (Movie) TableName() string {
	return "movies"
}

// Genre 电影类型实体
type Genre struct {
	ID     int      `json:"id" gorm:"primaryKey"`
	Name   string   `json:"name" gorm:"type:varchar(64);uniqueIndex"`
	Movies []*Movie `json:"-" gorm:"many2many:movie_genre"`
}

// TableName 指定表名
func (Genre) TableName() string {
	return "genres"
}

// Actor 演员实体
type Actor struct {
	ID     int      `json:"id" gorm:"primaryKey"`
	Name   string   `json:"name" gorm:"type:varchar(128);uniqueIndex"`
	Movies []*Movie `json:"-" gorm:"many2many:movie_actor"`
}

// TableName 指定表名
func (Actor) TableName() string {
	return "actors"
}

// Rating 用户评分实体
type Rating struct {
	ID      int     `json:"id" gorm:"primaryKey"`
	UserID  int     `json:"user_id" gorm:"index"`
	MovieID int     `json:"movie_id" gorm:"index"`
	Rating  float64 `json:"rating" gorm:"index"`
}

// TableName 指定表名
func (Rating) TableName() string {
	return "ratings"
}

// GenreNames 返回类型名称列表
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		if g != nil && g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return names
}

// ActorNames 返回演员名称列表
func (m *Movie) ActorNames() []string {
	names := make([]string, 0, len(m.Actors))
	for _, a := range m.Actors {
		if a != nil && a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}
