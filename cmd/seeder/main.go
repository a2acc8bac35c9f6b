// Copyright 2026 Civica Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Seeder writes a small set of sample policy documents into a docs
// directory and indexes them, so a fresh checkout has something to
// search against without real municipal data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/civica/policyrag"
	"github.com/civica/policyrag/config"
)

var docsDir = flag.String("docs", "./docs", "directory to write sample documents into")

var sampleDocuments = map[string]string{
	"garbage-sorting.md": `# Household Waste Sorting

Residents must separate household waste into four categories: recyclable
waste, kitchen waste, hazardous waste, and other waste. Recyclables
include paper, cardboard, glass bottles, metal cans, and rigid plastics.
Kitchen waste covers food scraps, peels, bones, and spoiled food.

Collection points accept sorted waste daily between 07:00 and 09:00 and
again between 18:00 and 20:00. Hazardous waste such as batteries,
expired medicine, and paint must go to the designated red containers
only. Violations are subject to a warning on first offense and a fine
between 50 and 200 on repeat offenses.`,

	"parking-permits.md": `# Residential Parking Permits

Street parking permits are issued by the district transport office to
residents who can show proof of address and vehicle registration.
Permits are valid for one calendar year and must be renewed in April.

Each household may hold at most two active permits. Visitor permits are
available for up to 14 days per quarter. Permit holders may park in any
marked residential bay within their district between 18:00 and 08:00 on
weekdays and all day on weekends.`,

	"noise-control.md": `# Construction Noise Control

Construction noise is prohibited between 22:00 and 06:00 on weekdays
and between 20:00 and 08:00 on weekends and public holidays. Interior
renovation work in residential buildings is limited to 09:00 through
17:00 on weekdays.

Projects lasting longer than 30 days require a noise management plan
filed with the district environment office. Residents may report
violations to the 24-hour hotline; inspectors respond within two
working days.`,

	"pet-registration.md": `# Pet Registration

Dog registration is mandatory within thirty days of acquiring a pet.
Registration requires proof of rabies vaccination and an implanted
microchip. The annual registration fee is waived for neutered animals
adopted from the municipal shelter.

Dogs must be leashed in all public areas. Designated off-leash zones
are listed on the parks department website and marked with green
signage at each entrance.`,

	"housing-subsidy.md": `# Housing Repair Subsidy

Owners of residential buildings constructed before 1990 may apply for
the facade and roof repair subsidy. The subsidy covers up to 40 percent
of approved repair costs, capped at 20000 per building.

Applications open in March each year and are reviewed by the housing
bureau in the order received. Approved works must be completed within
18 months, and receipts must be submitted within 60 days of completion.
Buildings that received the subsidy in the previous five years are not
eligible.`,
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seeder: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if err := os.MkdirAll(*docsDir, 0755); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}

	written := 0
	for name, text := range sampleDocuments {
		path := filepath.Join(*docsDir, name)
		if _, err := os.Stat(path); err == nil {
			continue // don't clobber existing documents
		}
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written++
	}
	fmt.Fprintf(os.Stderr, "Wrote %d sample documents to %s\n", written, *docsDir)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.DocsDir = *docsDir

	svc, err := policyrag.NewService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Close()

	result, err := svc.Sync(ctx, false)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Indexed %d new documents (%d chunks)\n",
		result.NewDocuments, result.AddedChunks)
	return nil
}
