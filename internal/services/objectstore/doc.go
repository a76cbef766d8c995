// Package objectstore publishes rendered videos to Cloudflare R2 (or any S3
// compatible store) through minio-go.
//
// Publishing never fails the job: any error, or missing credentials, yields
// the local path instead of a public URL.
package objectstore
