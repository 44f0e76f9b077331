// Package services wraps the external collaborators of the fetch pipeline.
//
// # Metadata
//
// [YouTubeMusicService] talks to the HTTP proxy wrapping ytmusicapi. The proxy handles
// YouTube Music authentication; the auth_file path is sent via the X-Auth-File header
// on each request. The HTTP client is built by [NewHTTPClient] from a chain of
// RoundTripper middlewares (user agent, rate limit, response cache, debug logging).
//
// # Downloader
//
// [YTDLP] shells out to yt-dlp and reports the audio files it produced.
//
// # Importer
//
// [Beets] shells out to `beet import`, stamping the source identifier as a flexible
// attribute so missing items can be re-fetched later.
//
// Both command wrappers go through a [CommandRunner] so tests can record invocations
// without spawning processes.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAPIRequest] : proxy returned a non-2xx status
//   - [shared.ErrAlbumNotFound], [shared.ErrTrackNotFound] : proxy returned 404
//   - [shared.ErrDownloadFailed], [shared.ErrNoFiles] : yt-dlp failed or produced nothing
//   - [shared.ErrImportFailed] : beet exited non-zero
package services
