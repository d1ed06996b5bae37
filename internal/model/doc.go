// Package model defines the core data structures used throughout
// rednote-downloader.
//
// # Post
//
// Post represents one resolved post with metadata, classified type, and the
// ordered list of media assets:
//
//	post := model.NewPost(id, model.PostTypeImageSet, title, author, authorID, publishedAt, pathConfig)
//	fmt.Println(post.Folder) // Where the post's files will be saved
//
// # Asset
//
// Asset is one downloadable file within a post. Its 1-based Index drives
// selective filtering and image numbering:
//
//	stem := post.AssetStem(asset.Index) // e.g. "image_<id>_3"
//
// Asset order within a Post is source order and must be preserved.
package model
