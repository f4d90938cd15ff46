package types

// RecipeFilter is the parsed form of the recipe list query parameters.
// Absent or unparseable values mean "no filtering" for that key.
type RecipeFilter struct {
	// TagSlugs keeps recipes carrying at least one of the named tags.
	TagSlugs []string
	// AuthorIDs keeps recipes by any of the listed author ids.
	AuthorIDs []string
	// IsFavorited / IsInShoppingCart restrict (true) or exclude (false)
	// recipes present in the requester's list. Ignored for anonymous
	// requesters.
	IsFavorited      *bool
	IsInShoppingCart *bool
}

// PageParams is page-number pagination input.
type PageParams struct {
	Page  int
	Limit int
}
