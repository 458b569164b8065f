// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

/*
Package jarshade merges jar/zip archives, directory trees and loose files
into one deterministic archive with per-entry policies. It is the archive
side of a jar shading pipeline: collect program jars, drop or patch entries,
merge them, and hand the result to a shrinker (see package shrink).

Merge rules (summary):
  - inputs are processed strictly in declared order, entries in source order;
  - global excludes are checked first, then input excludes, then the input
    callback; an exclude match skips the entry without calling the callback;
  - regex excludes must match the whole original entry name;
  - the first entry written under a final name wins, later non-directory
    duplicates are logged and dropped (or fail the merge in strict mode);
  - directory entries are idempotent and always end with "/";
  - unchanged archive entries are copied without recompression.

# Merging

Build an immutable plan and merge it into a file:

	plan, err := jarshade.NewBuilder(jarshade.MergeOptions{
	    Logger:       slog.Default(),
	    ExcludeGlobs: jarshade.DefaultExcludes(),
	}).
	    AddArchive("build/libs/app.jar").
	    AddArchive("libs/gradle-api-8.7.jar",
	        jarshade.WithEntryFunc(jarshade.SkipPrefix(jarshade.GradleImpldepMetaInfPrefix))).
	    AddArchive("libs/kotlin-stdlib-2.0.0.jar",
	        jarshade.WithEntryFunc(jarshade.PatchDefaultConstructorMarker())).
	    AddFile("LICENSE", "META-INF/LICENSE").
	    Exclude(`META-INF/.*\.kotlin_module`).
	    Build()
	if err != nil {
	    return err
	}
	res, err := jarshade.MergeFile(ctx, "build/embedded.jar", plan)
	if err != nil {
	    return err
	}
	_ = res.Digest

MergeFile writes to a temporary file next to the target and renames it into
place only on success. Use Merge to stream into any io.Writer.

Reproducible output needs a fixed timestamp:

	opts := jarshade.MergeOptions{
	    Writer: jarshade.WriterOptions{
	        ModTime: time.Date(1980, 2, 1, 0, 0, 0, 0, time.UTC),
	    },
	}

Fail instead of dropping duplicates:

	opts := jarshade.MergeOptions{Duplicates: jarshade.DuplicateFail}

# Entry callbacks

An EntryFunc returns a Disposition. Skip wins over everything, Name renames,
Open replaces content; rename and content replacement are independent:

	rename := func(e *jarshade.Entry) (jarshade.Disposition, error) {
	    if e.Name == "app.properties" {
	        return jarshade.Disposition{Name: "META-INF/app.properties"}, nil
	    }
	    return jarshade.Disposition{}, nil
	}
	each := jarshade.Chain(jarshade.SkipPrefix("tmp/"), rename)

# Diagnostics

Find names shared by several jars before merging:

	reports, err := jarshade.ClassifyDuplicates(ctx, jars, jarshade.DuplicateOptions{})
	if err != nil {
	    return err
	}
	for _, r := range reports {
	    fmt.Println(r.Name, r.Archives, r.Identical)
	}

# Extracting

Extract writes entries under a root and rejects names escaping it:

	if err := jarshade.Extract(ctx, "embedded.jar", "out/", jarshade.ExtractOptions{MaxWorkers: 4}); err != nil {
	    return err
	}
*/
package jarshade
