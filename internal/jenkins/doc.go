// Package jenkins provides an HTTP client for the Jenkins JSON API.
//
// # Overview
//
// The client covers the handful of endpoints jenky needs: the job list, job
// information with parameter definitions, build history with recorded
// parameter values, and the build trigger. Every operation takes a context and
// returns a typed *Error on failure.
//
// # Client Usage
//
//	client, err := jenkins.NewClient("https://ci.example.com", "alice", apiKey,
//		jenkins.WithTimeout(30*time.Second))
//	if err != nil {
//		return err
//	}
//	params, err := client.GetJobParameters(ctx, "deploy")
//	queueURL, err := client.BuildJob(ctx, "deploy", map[string]any{"DRY_RUN": true}, "")
//
// # Endpoints
//
//   - GET api/json: job list (name, url, color)
//   - GET job/<name>/api/json?depth=0: job info and parameter definitions
//   - GET job/<name>/api/json?tree=builds[...]: build history
//   - GET crumbIssuer/api/json: CSRF crumb
//   - POST job/<name>/build or job/<name>/buildWithParameters: trigger
//
// Folder jobs are addressed as "folder/name" and mapped to job/folder/job/name.
//
// # Authentication and CSRF
//
// Requests carry HTTP Basic auth when a username and API key are configured.
// The first POST fetches a crumb; later POSTs reuse it. A 404 from the crumb
// issuer is remembered as "no crumb needed".
//
// # Error Handling
//
//   - KindNotFound: HTTP 404, also matched by errors.Is(err, ErrNotFound)
//   - KindAuth: HTTP 401, 403 or 500
//   - KindStatus: any other HTTP error status
//   - KindTransport: network failures and timeouts
//   - KindParse: malformed JSON
//
// There are no retries. A single timeout covers the whole request.
package jenkins
