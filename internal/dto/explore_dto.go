package dto

type ExploreQuery struct {
	Search     string `query:"search"`
	Categories string `query:"categories"`
	Sort       string `query:"sort"`
	Page       int    `query:"page"`
}
