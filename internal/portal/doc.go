// Package portal is the geogate application context.
//
// A Portal restores the audit log, owns the session's location cache and
// builds a workflow for every catalog item, plus the direct-download
// workflow pinned to the first item. All workflows share the cache and the
// log, so one capture serves every later download of the session:
//
//	p, err := portal.New(ctx, portal.Config{
//	    Catalog:   catalog.Default(),
//	    Log:       auditlog.New(stateBucket, auditlog.Options{}),
//	    Acquirer:  geo.NewAcquirer(provider),
//	    Retriever: downloader.New(fetcher, saver, logger),
//	})
//	p.Download(ctx, "UID-8921")
//
// Every capture is also delivered on Captures for a toast-style notice.
package portal
