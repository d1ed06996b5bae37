// Package rednote implements the site-specific extraction logic: resolving
// raw text into canonical post URLs and parsing post pages into Post models.
//
// # Resolver
//
// Resolver recognizes three URL shapes:
//
//	https://www.xiaohongshu.com/explore/<id>           canonical
//	https://www.xiaohongshu.com/discovery/item/<id>    share
//	https://xhslink.com/<token>                        short (one redirect hop)
//
// Short links are expanded with a single non-following request before
// classification; share links take priority over canonical links.
//
// # Parser
//
// Parser pulls the window.__INITIAL_STATE__ object out of a post page,
// repairs its JavaScript-isms, and decodes it via the dto subpackage into a
// classified model.Post with an ordered asset list.
package rednote
