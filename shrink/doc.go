// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

/*
Package shrink runs the R8 shrinker as an external java process.

The shrinker is a black box: Command builds its argument list, Run executes
it and reports failures as *ToolError with captured diagnostics, and Download
fetches the R8 jar into a local cache.

	jar, err := shrink.Download(ctx, shrink.DownloadOptions{
	    Version: shrink.DefaultR8Version,
	    Dest:    shrink.DefaultJarPath(cacheDir, shrink.DefaultR8Version),
	})
	if err != nil {
	    return err
	}
	_, err = shrink.Run(ctx, shrink.Command{
	    ToolJar:         jar,
	    JDKHome:         os.Getenv("JAVA_HOME"),
	    ProgramFiles:    []string{"build/embedded.jar"},
	    ProguardConfigs: []string{"rules.pro"},
	    Output:          "build/shadowed.jar",
	    MappingOutput:   "build/mapping.txt",
	}, shrink.RunOptions{})
*/
package shrink
