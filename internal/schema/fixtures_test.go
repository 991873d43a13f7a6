package schema_test

import (
	"testing"

	"github.com/tsgonest/schemagen/internal/diagnostic"
	"github.com/tsgonest/schemagen/internal/schema"
	"github.com/tsgonest/schemagen/internal/testutil"
)

const openAPIEntry = "@/schemas/v3.1/strict/openapi-document.ts"

// openAPIFiles mirrors the layout of a workspace-store package: a
// document file publishing its definitions through a Type.Module table,
// with each definition in its own file.
var openAPIFiles = map[string]string{
	"src/schemas/v3.1/strict/ref-definitions.ts": `
export const REF_DEFINITIONS = {
  ContactObject: 'ContactObject',
  LicenseObject: 'LicenseObject',
  InfoObject: 'InfoObject',
} as const
`,
	"src/schemas/v3.1/strict/contact.ts": `
import { Type } from '@scalar/typebox'

/** Contact information for the exposed API. */
export const ContactObjectSchemaDefinition = Type.Object({
  /** The identifying name of the contact person/organization. */
  name: Type.Optional(Type.String()),
  /** The URI for the contact information. This MUST be in the form of a URI. */
  url: Type.Optional(Type.String()),
  /** The email address of the contact person/organization. This MUST be in the form of an email address. */
  email: Type.Optional(Type.String()),
})
`,
	"src/schemas/v3.1/strict/license.ts": `
import { Type } from '@scalar/typebox'

/** The license information for the exposed API. */
export const LicenseObjectSchemaDefinition = Type.Object({
  /** REQUIRED. The license name used for the API. */
  name: Type.Optional(Type.String()),
  /** An SPDX license expression for the API. The identifier field is mutually exclusive of the url field. */
  identifier: Type.Optional(Type.String()),
  /** A URI for the license used for the API. This MUST be in the form of a URI. The url field is mutually exclusive of the identifier field. */
  url: Type.Optional(Type.String()),
})
`,
	"src/schemas/extensions/document/x-scalar-sdk-installation.ts": `
import { Type } from '@scalar/typebox'

export const XScalarSdkInstallationSchema = Type.Object({
  /** Allow custom SDK installation instructions to be added to the API documentation. */
  'x-scalar-sdk-installation': Type.Optional(
    Type.Array(
      Type.Object({
        lang: Type.String(),
        source: Type.Optional(Type.String()),
        description: Type.Optional(Type.String()),
      }),
    ),
  ),
})
`,
	"src/schemas/v3.1/strict/info.ts": `
import { Type } from '@scalar/typebox'
import { compose } from '@/schemas/compose'
import { XScalarSdkInstallationSchema } from '@/schemas/extensions/document/x-scalar-sdk-installation'
import { ContactObjectRef, LicenseObjectRef } from './ref-definitions'

/** The object provides metadata about the API. */
export const InfoObjectSchemaDefinition = compose(
  Type.Object({
    /** REQUIRED. The title of the API. */
    title: Type.String(),
    /** A short summary of the API. */
    summary: Type.Optional(Type.String()),
    /** The contact information for the exposed API. */
    contact: Type.Optional(ContactObjectRef),
    /** The license information for the exposed API. */
    license: Type.Optional(LicenseObjectRef),
    /** REQUIRED. The version of the OpenAPI Document. */
    version: Type.String(),
  }),
  XScalarSdkInstallationSchema,
)
`,
	"src/schemas/v3.1/strict/openapi-document.ts": `
import { Type } from '@scalar/typebox'
import { REF_DEFINITIONS } from './ref-definitions'
import { ContactObjectSchemaDefinition } from './contact'
import { LicenseObjectSchemaDefinition } from './license'
import { InfoObjectSchemaDefinition } from './info'

const module = Type.Module({
  [REF_DEFINITIONS.ContactObject]: ContactObjectSchemaDefinition,
  [REF_DEFINITIONS.LicenseObject]: LicenseObjectSchemaDefinition,
  [REF_DEFINITIONS.InfoObject]: InfoObjectSchemaDefinition,
} satisfies Record<string, unknown>)

export const ContactObjectSchema = module.Import('ContactObject')
export const LicenseObjectSchema = module.Import('LicenseObject')
export const InfoObjectSchema = module.Import('InfoObject')
`,
}

const contactObjectType = `/** Contact information for the exposed API. */
export type ContactObject = {
  /** The identifying name of the contact person/organization. */
  name?: string
  /** The URI for the contact information. This MUST be in the form of a URI. */
  url?: string
  /** The email address of the contact person/organization. This MUST be in the form of an email address. */
  email?: string
}`

const licenseObjectType = `/** The license information for the exposed API. */
export type LicenseObject = {
  /** REQUIRED. The license name used for the API. */
  name?: string
  /** An SPDX license expression for the API. The identifier field is mutually exclusive of the url field. */
  identifier?: string
  /** A URI for the license used for the API. This MUST be in the form of a URI. The url field is mutually exclusive of the identifier field. */
  url?: string
}`

const infoObjectType = `/** The object provides metadata about the API. */
export type InfoObject = {
  /** REQUIRED. The title of the API. */
  title: string
  /** A short summary of the API. */
  summary?: string
  /** The contact information for the exposed API. */
  contact?: ContactObject
  /** The license information for the exposed API. */
  license?: LicenseObject
  /** REQUIRED. The version of the OpenAPI Document. */
  version: string
  /** Allow custom SDK installation instructions to be added to the API documentation. */
  'x-scalar-sdk-installation'?: {
    lang: string
    source?: string
    description?: string
  }[]
}`

// newGenerator serves files from memory under testutil.ProjectRoot.
func newGenerator(t *testing.T, files map[string]string, diags *diagnostic.Collector) (*schema.Generator, *testutil.OverlayVFS) {
	t.Helper()
	fs := testutil.NewProjectFS(files)
	return schema.NewGenerator(schema.Options{
		FS:          fs,
		Cwd:         testutil.ProjectRoot,
		Diagnostics: diags,
	}), fs
}

// withFiles returns openAPIFiles plus extra.
func withFiles(extra map[string]string) map[string]string {
	out := make(map[string]string, len(openAPIFiles)+len(extra))
	for k, v := range openAPIFiles {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
